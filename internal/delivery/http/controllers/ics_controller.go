package controllers

import (
	"io"
	"log/slog"
	"net/http"

	"familycal/internal/domain"
)

// CalendarWriter serializes events as an iCalendar document.
type CalendarWriter interface {
	Write(w io.Writer, events []*domain.Event) error
}

type ICSController struct {
	Logger   *slog.Logger
	Service  domain.EventService
	Exporter CalendarWriter
}

func NewICSController(logger *slog.Logger, svc domain.EventService, exporter CalendarWriter) *ICSController {
	return &ICSController{Logger: logger, Service: svc, Exporter: exporter}
}

// Export godoc
// @Summary iCalendar feed
// @Description All events as text/calendar, with a weekly RRULE for recurring events and a display alarm for each reminder.
// @Tags calendar
// @Produce text/calendar
// @Success 200 {string} string "VCALENDAR document"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar.ics [get]
func (c *ICSController) Export(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context(), domain.EventFilter{})
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="familycal.ics"`)
	if err := c.Exporter.Write(w, events); err != nil {
		c.Logger.ErrorContext(r.Context(), "write calendar failed", "err", err)
	}
}
