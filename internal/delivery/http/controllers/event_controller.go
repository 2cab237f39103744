package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"familycal/internal/delivery/http/helpers"
	"familycal/internal/domain"
)

const (
	moveDateLayout   = "2006-01-02"
	msgEventNotFound = "event not found"
	msgMissingFields = "Missing required fields"
)

// EventRequest is the request body for POST /events and PUT /events/{id}.
// PUT replaces every field; id and timestamps are server-managed.
type EventRequest struct {
	Title           string    `json:"title" validate:"required"`
	Person          string    `json:"person" validate:"required"`
	Category        string    `json:"category" validate:"required"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" validate:"required"`
	Recurring       bool      `json:"recurring"`
	ReminderMinutes *int      `json:"reminder_minutes" validate:"omitempty,min=1"`
	Notes           *string   `json:"notes"`
}

// Validate implements Validator. Missing fields collapse into one message.
func (e EventRequest) Validate() []string {
	if missing := helpers.MissingFields(e); len(missing) > 0 {
		return []string{msgMissingFields + ": " + strings.Join(missing, ", ")}
	}
	return helpers.FieldMessages(e)
}

func (e EventRequest) toEvent(id string) *domain.Event {
	return &domain.Event{
		ID:              id,
		Title:           e.Title,
		Person:          e.Person,
		Category:        e.Category,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Recurring:       e.Recurring,
		ReminderMinutes: e.ReminderMinutes,
		Notes:           e.Notes,
	}
}

// MoveEventRequest is the request body for POST /events/{id}/move.
type MoveEventRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Hour *int   `json:"hour" validate:"required,min=0,max=23"`
}

func (m MoveEventRequest) Validate() []string {
	return helpers.FieldMessages(m)
}

// EventSuccessResponse is the success envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for GET /events.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger   *slog.Logger
	Service  domain.EventService
	Location *time.Location
}

func NewEventController(logger *slog.Logger, svc domain.EventService, loc *time.Location) *EventController {
	return &EventController{Logger: logger, Service: svc, Location: loc}
}

// ListEvents godoc
// @Summary List events
// @Description Events whose start time lies within [start, end], ordered by start. Both bounds are optional RFC3339 timestamps.
// @Tags events
// @Produce json
// @Param start query string false "Lower bound on start time (RFC3339)"
// @Param end query string false "Upper bound on start time (RFC3339)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	from, err := helpers.QueryTime(r, "start")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	to, err := helpers.QueryTime(r, "end")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	events, err := c.Service.ListEvents(r.Context(), domain.EventFilter{From: from, To: to})
	if err != nil {
		writeServiceError(w, r, c.Logger, err, msgEventNotFound)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event and queues a new-event chat notification. id and timestamps are server-generated.
// @Tags events
// @Accept json
// @Produce json
// @Param event body EventRequest true "Event fields"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event := req.toEvent("")
	if err := c.Service.CreateEvent(r.Context(), event, nil); err != nil {
		writeServiceError(w, r, c.Logger, err, msgEventNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Replace an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param event body EventRequest true "Event fields"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), req.toEvent(id))
	if err != nil {
		writeServiceError(w, r, c.Logger, err, msgEventNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data: {success: true}"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, c.Logger, err, msgEventNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.SuccessResult{Success: true})
}

// MoveEvent godoc
// @Summary Move an event to another day and hour
// @Description Drag-and-drop reschedule. The event keeps its duration; title, person and category are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param move body MoveEventRequest true "Target date (YYYY-MM-DD) and hour (0-23)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id}/move [post]
func (c *EventController) MoveEvent(w http.ResponseWriter, r *http.Request) {
	var req MoveEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	day, err := time.ParseInLocation(moveDateLayout, req.Date, c.Location)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}
	event, err := c.Service.MoveEvent(r.Context(), r.PathValue("id"), day, *req.Hour)
	if err != nil {
		writeServiceError(w, r, c.Logger, err, msgEventNotFound)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
