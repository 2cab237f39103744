package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"familycal/internal/delivery/http/controllers"
	"familycal/internal/delivery/http/middleware"
	"familycal/internal/metrics"
)

// Controllers groups every handler the router mounts.
type Controllers struct {
	Events        *controllers.EventController
	Announcements *controllers.AnnouncementController
	Parse         *controllers.ParseController
	Calendar      *controllers.CalendarController
	ICS           *controllers.ICSController
	Cron          *controllers.CronController
	Webhook       *controllers.WebhookController
	Health        *controllers.HealthController
}

// RouterConfig holds the non-controller pieces of the router.
type RouterConfig struct {
	CronSecret string
	Metrics    http.Handler
	Logger     *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("GET /events", c.Events.ListEvents)
	mux.HandleFunc("POST /events", c.Events.CreateEvent)
	mux.HandleFunc("PUT /events/{id}", c.Events.UpdateEvent)
	mux.HandleFunc("DELETE /events/{id}", c.Events.DeleteEvent)
	mux.HandleFunc("POST /events/{id}/move", c.Events.MoveEvent)
	mux.HandleFunc("POST /parse-event", c.Parse.ParseEvent)

	// Announcements
	mux.HandleFunc("GET /announcements", c.Announcements.ListAnnouncements)
	mux.HandleFunc("POST /announcements", c.Announcements.CreateAnnouncement)
	mux.HandleFunc("DELETE /announcements/{id}", c.Announcements.DeleteAnnouncement)

	// Calendar views and dialog
	mux.HandleFunc("GET /calendar/{mode}", c.Calendar.GetView)
	mux.HandleFunc("POST /calendar/dialog", c.Calendar.OpenDialog)
	mux.HandleFunc("POST /calendar/dialog/save", c.Calendar.SaveDialog)
	mux.HandleFunc("GET /calendar.ics", c.ICS.Export)

	// Scheduler hooks
	requireCron := middleware.RequireCronSecret(cfg.CronSecret, cfg.Logger)
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		mux.HandleFunc(method+" /cron/check-reminders", requireCron(c.Cron.CheckReminders))
		mux.HandleFunc(method+" /cron/daily-schedule", requireCron(c.Cron.DailySchedule))
	}

	// Chat bot
	mux.HandleFunc("POST /telegram/webhook", c.Webhook.TelegramWebhook)

	// Ops
	mux.HandleFunc("GET /healthz", c.Health.Health)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// Wrap applies the request middleware chain: CORS, then metrics, then logging.
func Wrap(mux http.Handler, allowedOrigins []string, collector *metrics.Collector, logger *slog.Logger) http.Handler {
	h := middleware.LoggingMiddleware(logger, mux)
	if collector != nil {
		h = middleware.Metrics(collector, h)
	}
	return middleware.CORS(allowedOrigins, h)
}
