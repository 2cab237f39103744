package controllers

import (
	"log/slog"
	"net/http"

	"familycal/internal/delivery/http/helpers"
	"familycal/internal/domain"
)

// ParseEventRequest is the request body for POST /parse-event.
type ParseEventRequest struct {
	Text string `json:"text" validate:"required"`
}

func (p ParseEventRequest) Validate() []string {
	if len(helpers.MissingFields(p)) > 0 {
		return []string{msgMissingText}
	}
	return nil
}

// ParsedEventSuccessResponse is the success envelope for POST /parse-event.
type ParsedEventSuccessResponse struct {
	Data  *domain.ParsedEvent `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type ParseController struct {
	Logger  *slog.Logger
	Service domain.ParseService
}

func NewParseController(logger *slog.Logger, svc domain.ParseService) *ParseController {
	return &ParseController{Logger: logger, Service: svc}
}

// ParseEvent godoc
// @Summary Parse free text into event fields
// @Description Sends the text to the language model and returns title, person, category, dates, times, reminder and notes. Missing optional fields are defaulted.
// @Tags events
// @Accept json
// @Produce json
// @Param request body ParseEventRequest true "Free text"
// @Success 200 {object} controllers.ParsedEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error (Missing API key)"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway (No response from AI / Could not parse AI response)"
// @Router /parse-event [post]
func (c *ParseController) ParseEvent(w http.ResponseWriter, r *http.Request) {
	var req ParseEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	parsed, err := c.Service.ParseEvent(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, parsed)
}
