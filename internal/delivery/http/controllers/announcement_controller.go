package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"familycal/internal/delivery/http/helpers"
	"familycal/internal/domain"
)

const msgMissingText = "Missing text"

// CreateAnnouncementRequest is the request body for POST /announcements.
// Color is a palette index and defaults to 0.
type CreateAnnouncementRequest struct {
	Text  string `json:"text"`
	Color *int   `json:"color"`
}

func (c CreateAnnouncementRequest) Validate() []string {
	if strings.TrimSpace(c.Text) == "" {
		return []string{msgMissingText}
	}
	return nil
}

// AnnouncementSuccessResponse is the success envelope for POST /announcements (201).
type AnnouncementSuccessResponse struct {
	Data  *domain.Announcement `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type AnnouncementController struct {
	Logger  *slog.Logger
	Service domain.AnnouncementService
}

func NewAnnouncementController(logger *slog.Logger, svc domain.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{Logger: logger, Service: svc}
}

// ListAnnouncements godoc
// @Summary List announcements, newest first
// @Tags announcements
// @Produce json
// @Success 200 {object} helpers.APIResponse "data: announcements"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /announcements [get]
func (c *AnnouncementController) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	list, err := c.Service.ListAnnouncements(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "announcement not found")
		return
	}
	if list == nil {
		list = []*domain.Announcement{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// CreateAnnouncement godoc
// @Summary Create an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Param announcement body CreateAnnouncementRequest true "Text and optional palette color index"
// @Success 201 {object} controllers.AnnouncementSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /announcements [post]
func (c *AnnouncementController) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req CreateAnnouncementRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	a, err := c.Service.CreateAnnouncement(r.Context(), req.Text, req.Color)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "announcement not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, a)
}

// DeleteAnnouncement godoc
// @Summary Delete an announcement
// @Tags announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 200 {object} helpers.APIResponse "data: {success: true}"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /announcements/{id} [delete]
func (c *AnnouncementController) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteAnnouncement(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, c.Logger, err, "announcement not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.SuccessResult{Success: true})
}
