// @title           Family Calendar API
// @version         1.0
// @description     Shared family calendar with day, week and month views, announcements, free-text event parsing and a Telegram bot.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Cron endpoints expect "Bearer <CRON_SECRET>".
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"familycal/config"
	"familycal/internal/adapters/email"
	"familycal/internal/adapters/ics"
	"familycal/internal/adapters/openai"
	"familycal/internal/adapters/telegram"
	"familycal/internal/bot"
	delivery "familycal/internal/delivery/http"
	"familycal/internal/delivery/http/controllers"
	"familycal/internal/domain"
	"familycal/internal/metrics"
	"familycal/internal/repository/postgres"
	"familycal/internal/scheduler"
	"familycal/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("familycal stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	family := cfg.Family()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	eventRepo := postgres.NewEventRepository(db)
	announcementRepo := postgres.NewAnnouncementRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	collector := metrics.NewCollector()

	// Chat and AI collaborators stay nil interfaces when unconfigured.
	var (
		messenger   domain.Messenger
		model       domain.LanguageModel
		transcriber domain.Transcriber
		botUsername = cfg.Telegram.BotUsername
	)
	if cfg.Telegram.BotToken != "" {
		tg, err := telegram.NewMessenger(telegram.Config{Token: cfg.Telegram.BotToken}, logger)
		if err != nil {
			return err
		}
		if err := tg.RegisterCommands(); err != nil {
			logger.Warn("telegram commands not registered", "err", err)
		}
		if botUsername == "" {
			botUsername = tg.Username()
		}
		messenger = tg
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, chat notifications disabled")
	}
	if cfg.OpenAI.APIKey != "" {
		ai := openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		}, openai.DefaultBreakerConfig(), collector, logger)
		model, transcriber = ai, ai
	} else {
		logger.Warn("OPENAI_API_KEY not set, free-text parsing disabled")
	}

	var emailService domain.EmailService
	if len(cfg.Email.DigestEmails) > 0 {
		mailer, err := email.NewMailer(email.MailerConfig{
			Provider:    cfg.Email.Provider,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
			SES: email.SESConfig{
				Region:             cfg.Email.AWSRegion,
				AccessKeyID:        cfg.Email.AWSAccessKeyID,
				SecretAccessKey:    cfg.Email.AWSSecretKey,
				InsecureSkipVerify: cfg.Email.SESInsecureSkip,
			},
		}, logger)
		if err != nil {
			return fmt.Errorf("create mailer: %w", err)
		}
		renderer, err := email.NewTemplateRenderer()
		if err != nil {
			return fmt.Errorf("load email templates: %w", err)
		}
		emailService = services.NewEmailService(mailer, renderer, logger)
	}

	notifier := services.NewNotifier(messenger, outboxRepo, family, cfg.Telegram.ChatIDs, collector, logger)
	eventService := services.NewEventService(eventRepo, notifier, family, logger, cfg.RequestTimeout)
	announcementService := services.NewAnnouncementService(announcementRepo, cfg.RequestTimeout)
	parseService := services.NewParseService(model, family, cfg.RequestTimeout)
	scheduleService := services.NewScheduleService(eventRepo, notifier, emailService, services.ScheduleConfig{
		Family:       family,
		DigestEmails: cfg.Email.DigestEmails,
		AppURL:       cfg.AppURL,
		Disabled:     cfg.Cron.Disabled,
		Timeout:      cfg.RequestTimeout,
	}, logger)
	calendarService := services.NewCalendarService(eventRepo, eventService, parseService, family, cfg.RequestTimeout)

	botHandler := bot.NewHandler(messenger, eventService, parseService, transcriber, scheduleService, bot.Config{
		Family:   family,
		AppURL:   cfg.AppURL,
		Username: botUsername,
	}, logger)

	mux := delivery.NewRouter(delivery.Controllers{
		Events:        controllers.NewEventController(logger, eventService, family.Loc()),
		Announcements: controllers.NewAnnouncementController(logger, announcementService),
		Parse:         controllers.NewParseController(logger, parseService),
		Calendar:      controllers.NewCalendarController(logger, calendarService),
		ICS:           controllers.NewICSController(logger, eventService, ics.NewExporter(family)),
		Cron:          controllers.NewCronController(logger, scheduleService),
		Webhook:       controllers.NewWebhookController(logger, botHandler),
		Health:        controllers.NewHealthController(logger, db),
	}, delivery.RouterConfig{
		CronSecret: cfg.Cron.Secret,
		Metrics:    collector.Handler(),
		Logger:     logger,
	})

	runner := scheduler.New(ctx, family.Loc(), logger)
	// DISABLE_CRON_JOBS is enforced by the schedule service; the outbox sweep always runs.
	if err := runner.Register(scheduler.Jobs{
		Schedule:       scheduleService,
		Notifier:       notifier,
		ReminderSpec:   cfg.Cron.ReminderSpec,
		DigestSpec:     cfg.Cron.DigestSpec,
		OutboxInterval: cfg.OutboxInterval,
	}); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}
	runner.Start()
	defer runner.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           delivery.Wrap(mux, cfg.CORSAllowedOrigins, collector, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		notifier.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "timezone", family.Loc().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
