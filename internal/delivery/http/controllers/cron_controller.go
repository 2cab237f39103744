package controllers

import (
	"log/slog"
	"net/http"

	"familycal/internal/delivery/http/helpers"
	"familycal/internal/domain"
)

// ReminderReportSuccessResponse is the success envelope for /cron/check-reminders.
type ReminderReportSuccessResponse struct {
	Data  *domain.ReminderReport `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// DigestReportSuccessResponse is the success envelope for /cron/daily-schedule.
type DigestReportSuccessResponse struct {
	Data  *domain.DigestReport `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CronController exposes the scheduled jobs for an external scheduler.
type CronController struct {
	Logger  *slog.Logger
	Service domain.ScheduleService
}

func NewCronController(logger *slog.Logger, svc domain.ScheduleService) *CronController {
	return &CronController{Logger: logger, Service: svc}
}

// CheckReminders godoc
// @Summary Send due reminders
// @Description Broadcasts a reminder for every event whose reminder instant fell within the last six minutes. Safe to retry; a retry may repeat a reminder.
// @Tags cron
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ReminderReportSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /cron/check-reminders [post]
func (c *CronController) CheckReminders(w http.ResponseWriter, r *http.Request) {
	report, err := c.Service.CheckReminders(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// DailySchedule godoc
// @Summary Send today's schedule
// @Description Broadcasts today's events and per-person counts, and emails them to the digest recipients when configured.
// @Tags cron
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.DigestReportSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /cron/daily-schedule [post]
func (c *CronController) DailySchedule(w http.ResponseWriter, r *http.Request) {
	report, err := c.Service.SendDailyDigest(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}
