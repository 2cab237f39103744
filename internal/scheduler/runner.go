// Package scheduler runs the periodic notification jobs on a robfig/cron runner.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"familycal/internal/domain"
)

// Runner wraps a seconds-precision cron with a base context that every job receives.
type Runner struct {
	cron    *cron.Cron
	logger  *slog.Logger
	baseCtx context.Context
}

// New builds a runner evaluating specs in loc. Jobs that are still running when
// their next tick fires are skipped, and panics are recovered and logged.
func New(baseCtx context.Context, loc *time.Location, logger *slog.Logger) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{logger: logger}
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add schedules job under spec (six fields, seconds first, or a descriptor like "@every 5s").
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		if r.baseCtx.Err() != nil {
			return
		}
		job(r.baseCtx)
	})
}

func (r *Runner) Start() {
	r.logger.Info("cron started", "entries", len(r.cron.Entries()))
	r.cron.Start()
}

// Stop prevents new runs and waits for running jobs to return.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("cron stopped")
}

// Jobs are the periodic tasks of the calendar. An empty spec leaves that job unscheduled.
type Jobs struct {
	Schedule       domain.ScheduleService
	Notifier       domain.Notifier
	ReminderSpec   string
	DigestSpec     string
	OutboxInterval time.Duration
}

// Register adds the reminder check, the daily digest and the outbox sweep.
func (r *Runner) Register(j Jobs) error {
	if j.ReminderSpec != "" {
		if _, err := r.Add(j.ReminderSpec, reminderJob(j.Schedule, r.logger)); err != nil {
			return fmt.Errorf("schedule reminders %q: %w", j.ReminderSpec, err)
		}
	}
	if j.DigestSpec != "" {
		if _, err := r.Add(j.DigestSpec, digestJob(j.Schedule, r.logger)); err != nil {
			return fmt.Errorf("schedule daily digest %q: %w", j.DigestSpec, err)
		}
	}
	if j.OutboxInterval > 0 {
		spec := "@every " + j.OutboxInterval.String()
		if _, err := r.Add(spec, outboxJob(j.Notifier, r.logger)); err != nil {
			return fmt.Errorf("schedule outbox sweep: %w", err)
		}
	}
	return nil
}

func reminderJob(s domain.ScheduleService, logger *slog.Logger) func(context.Context) {
	return func(ctx context.Context) {
		report, err := s.CheckReminders(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "reminder check failed", "err", err)
			return
		}
		if report.RemindersSent > 0 {
			logger.InfoContext(ctx, "reminders sent", "checked", report.RemindersChecked, "sent", report.RemindersSent)
		}
	}
}

func digestJob(s domain.ScheduleService, logger *slog.Logger) func(context.Context) {
	return func(ctx context.Context) {
		report, err := s.SendDailyDigest(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "daily digest failed", "err", err)
			return
		}
		if report.Disabled {
			return
		}
		logger.InfoContext(ctx, "daily digest sent", "events", report.EventCount, "success", report.Success)
	}
}

func outboxJob(n domain.Notifier, logger *slog.Logger) func(context.Context) {
	return func(ctx context.Context) {
		if _, err := n.DispatchPending(ctx); err != nil {
			logger.ErrorContext(ctx, "outbox sweep failed", "err", err)
		}
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
