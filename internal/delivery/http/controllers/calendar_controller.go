package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"familycal/internal/calendar"
	"familycal/internal/delivery/http/helpers"
	"familycal/internal/domain"
)

// CalendarService is what the calendar endpoints need from the service layer.
type CalendarService interface {
	View(ctx context.Context, st calendar.State, people []string) (*calendar.View, error)
	NewDialog(day time.Time, hour *int) (*calendar.Dialog, error)
	EditDialog(ctx context.Context, eventID string) (*calendar.Dialog, error)
	AssistDialog(ctx context.Context, day time.Time, hour *int, text string) (*calendar.Dialog, error)
	SaveDialog(ctx context.Context, eventID string, draft calendar.Draft) (*domain.Event, error)
	Family() domain.Family
}

// DialogRequest is the request body for POST /calendar/dialog. event_id opens
// an edit dialog; otherwise date (and optionally hour) opens a create dialog,
// filled from text when it is given.
type DialogRequest struct {
	EventID string `json:"event_id"`
	Date    string `json:"date" validate:"required_without=EventID,omitempty,datetime=2006-01-02"`
	Hour    *int   `json:"hour" validate:"omitempty,min=0,max=23"`
	Text    string `json:"text"`
}

func (d DialogRequest) Validate() []string {
	return helpers.FieldMessages(d)
}

// SaveDialogRequest is the request body for POST /calendar/dialog/save.
type SaveDialogRequest struct {
	EventID string         `json:"event_id"`
	Draft   calendar.Draft `json:"draft"`
}

func (s SaveDialogRequest) Validate() []string {
	if missing := s.Draft.Missing(); len(missing) > 0 {
		return []string{msgMissingFields + ": " + strings.Join(missing, ", ")}
	}
	return nil
}

// ViewSuccessResponse is the success envelope for GET /calendar/{mode}.
type ViewSuccessResponse struct {
	Data  *calendar.View    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DialogSuccessResponse is the success envelope for POST /calendar/dialog.
type DialogSuccessResponse struct {
	Data  *calendar.Dialog  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type CalendarController struct {
	Logger  *slog.Logger
	Service CalendarService
	Now     func() time.Time
}

func NewCalendarController(logger *slog.Logger, svc CalendarService) *CalendarController {
	return &CalendarController{Logger: logger, Service: svc, Now: time.Now}
}

// GetView godoc
// @Summary Render a day, week or month view
// @Description Returns day columns with laid-out event blocks (column, geometry, labels, conflict flags) and the visible hour range, or a 6x7 month grid. nav moves from date and resets the hour expansion.
// @Tags calendar
// @Produce json
// @Param mode path string true "day, week or month"
// @Param date query string false "Reference date YYYY-MM-DD (default today)"
// @Param nav query string false "prev, next or today"
// @Param expand_start query int false "Extra hours revealed before the first event"
// @Param expand_end query int false "Extra hours revealed after the last event"
// @Param people query string false "Comma-separated people to show; omit to show everyone"
// @Success 200 {object} controllers.ViewSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar/{mode} [get]
func (c *CalendarController) GetView(w http.ResponseWriter, r *http.Request) {
	st, err := c.state(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	view, err := c.Service.View(r.Context(), st, helpers.QueryList(r, "people"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

var errUnknownNav = errors.New("nav must be prev, next or today")

func (c *CalendarController) state(r *http.Request) (calendar.State, error) {
	mode, err := calendar.ParseMode(r.PathValue("mode"))
	if err != nil {
		return calendar.State{}, err
	}
	loc := c.Service.Family().Loc()
	now := c.Now().In(loc)
	date, err := helpers.QueryDate(r, "date", loc, now)
	if err != nil {
		return calendar.State{}, err
	}
	st := calendar.State{Mode: mode, Date: date}
	switch r.URL.Query().Get("nav") {
	case "":
	case "prev":
		return st.Prev(), nil
	case "next":
		return st.Next(), nil
	case "today":
		return st.Today(now), nil
	default:
		return calendar.State{}, errUnknownNav
	}
	if st.ExpandStart, err = helpers.QueryNonNegativeInt(r, "expand_start"); err != nil {
		return calendar.State{}, err
	}
	if st.ExpandEnd, err = helpers.QueryNonNegativeInt(r, "expand_end"); err != nil {
		return calendar.State{}, err
	}
	return st, nil
}

// OpenDialog godoc
// @Summary Open the create or edit dialog
// @Description With event_id, returns the edit dialog prefilled from the event. Otherwise returns a create dialog on date (hour:00 to hour+1:00, or 08:00 to 09:00). With text, the create dialog is filled by the language model; a parse failure is reported in assist_error.
// @Tags calendar
// @Accept json
// @Produce json
// @Param request body DialogRequest true "Dialog target"
// @Success 200 {object} controllers.DialogSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar/dialog [post]
func (c *CalendarController) OpenDialog(w http.ResponseWriter, r *http.Request) {
	var req DialogRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	var (
		d   *calendar.Dialog
		err error
	)
	switch {
	case req.EventID != "":
		d, err = c.Service.EditDialog(r.Context(), req.EventID)
	default:
		day, perr := time.ParseInLocation(moveDateLayout, req.Date, c.Service.Family().Loc())
		if perr != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
		if req.Text != "" {
			d, err = c.Service.AssistDialog(r.Context(), day, req.Hour, req.Text)
		} else {
			d, err = c.Service.NewDialog(day, req.Hour)
		}
	}
	if err != nil {
		writeServiceError(w, r, c.Logger, err, msgEventNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, d)
}

// SaveDialog godoc
// @Summary Save the dialog draft
// @Description Creates a new event from the draft, or replaces event_id with it.
// @Tags calendar
// @Accept json
// @Produce json
// @Param request body SaveDialogRequest true "Draft and optional event id"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar/dialog/save [post]
func (c *CalendarController) SaveDialog(w http.ResponseWriter, r *http.Request) {
	var req SaveDialogRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	e, err := c.Service.SaveDialog(r.Context(), req.EventID, req.Draft)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, msgEventNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, e)
}
