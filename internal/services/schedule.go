package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"familycal/internal/calendar"
	"familycal/internal/domain"
)

const (
	// ReminderWindow is how long after its due instant a reminder is still sent.
	ReminderWindow = 6 * time.Minute
	reminderLookback = time.Hour
)

// ScheduleConfig carries the settings for the reminder and digest jobs.
type ScheduleConfig struct {
	Family       domain.Family
	DigestEmails []string
	AppURL       string
	Disabled     bool
	Timeout      time.Duration
}

type scheduleService struct {
	eventRepo      domain.EventRepository
	notifier       domain.Notifier
	emailService   domain.EmailService
	family         domain.Family
	digestEmails   []string
	appURL         string
	disabled       bool
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewScheduleService returns the reminder and digest jobs. emailService may be nil when no digest emails are configured.
func NewScheduleService(eventRepo domain.EventRepository,
	notifier domain.Notifier,
	emailService domain.EmailService,
	cfg ScheduleConfig,
	logger *slog.Logger,
) domain.ScheduleService {
	return &scheduleService{
		eventRepo:      eventRepo,
		notifier:       notifier,
		emailService:   emailService,
		family:         cfg.Family,
		digestEmails:   cfg.DigestEmails,
		appURL:         cfg.AppURL,
		disabled:       cfg.Disabled,
		logger:         logger,
		contextTimeout: cfg.Timeout,
		now:            time.Now,
	}
}

// reminderDue reports whether now falls in [reminderAt, reminderAt+ReminderWindow).
func reminderDue(e *domain.Event, now time.Time) bool {
	if !e.HasReminder() {
		return false
	}
	diff := now.Sub(e.ReminderAt())
	return diff >= 0 && diff < ReminderWindow
}

// CheckReminders broadcasts every reminder that is due now. A retried run
// inside the same window sends the reminder again.
func (s *scheduleService) CheckReminders(ctx context.Context) (*domain.ReminderReport, error) {
	if s.disabled {
		return &domain.ReminderReport{Success: true, Disabled: true, Results: []domain.ReminderResult{}}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now()
	events, err := s.eventRepo.ListWithReminders(ctx, now.Add(-reminderLookback))
	if err != nil {
		return nil, fmt.Errorf("list reminder events: %w", err)
	}

	report := &domain.ReminderReport{
		Success:          true,
		RemindersChecked: len(events),
		Results:          make([]domain.ReminderResult, 0),
	}
	for _, e := range events {
		if !reminderDue(e, now) {
			continue
		}
		res := s.notifier.Broadcast(ctx, domain.NotificationReminder, reminderMessage(s.family, e), nil)
		report.RemindersSent++
		report.Results = append(report.Results, domain.ReminderResult{
			EventID: e.ID,
			Title:   e.Title,
			Sent:    res.OK,
		})
		s.logger.InfoContext(ctx, "reminder sent", "event_id", e.ID, "ok", res.OK, "sent", res.Sent, "failed", res.Failed)
	}
	return report, nil
}

// SendDailyDigest broadcasts today's schedule and mails it to the digest recipients.
// Email failures are logged only.
func (s *scheduleService) SendDailyDigest(ctx context.Context) (*domain.DigestReport, error) {
	if s.disabled {
		return &domain.DigestReport{Success: true, Disabled: true}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	today := s.now().In(s.family.Loc())
	events, err := s.dayEvents(ctx, today)
	if err != nil {
		return nil, err
	}
	msg := dailyScheduleMessage(s.family, today, events)
	res := s.notifier.Broadcast(ctx, domain.NotificationDailyDigest, msg, nil)

	if s.emailService != nil {
		for _, to := range s.digestEmails {
			data := &domain.DailyDigestEmailData{
				Email:   to,
				DayName: today.Weekday().String(),
				Date:    today.Format(fullDateLayout),
				Lines:   digestLines(s.family, events),
				Counts:  personCounts(s.family, events),
				AppURL:  s.appURL,
			}
			if err := s.emailService.SendDailyDigest(ctx, data); err != nil {
				s.logger.WarnContext(ctx, "daily digest email failed", "to", to, "err", err)
			}
		}
	}

	return &domain.DigestReport{
		Success:    res.OK,
		EventCount: len(events),
		Message:    msg,
	}, nil
}

func (s *scheduleService) DaySummary(ctx context.Context, day time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.dayEvents(ctx, day)
	if err != nil {
		return "", err
	}
	return dailyScheduleMessage(s.family, day, events), nil
}

// WeekSummary lists the week containing ref, starting on the configured week start.
func (s *scheduleService) WeekSummary(ctx context.Context, ref time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	loc := s.family.Loc()
	dates := calendar.WeekDates(ref, loc, s.family.WeekStart)
	from := dates[0]
	_, to := calendar.DayBounds(dates[len(dates)-1], loc)
	events, err := s.eventRepo.List(ctx, domain.EventFilter{From: &from, To: &to})
	if err != nil {
		return "", fmt.Errorf("list week events: %w", err)
	}
	return weekScheduleMessage(s.family, from, to, events), nil
}

// dayEvents returns events starting on day in the family zone, ordered by start.
func (s *scheduleService) dayEvents(ctx context.Context, day time.Time) ([]*domain.Event, error) {
	from, to := calendar.DayBounds(day, s.family.Loc())
	events, err := s.eventRepo.List(ctx, domain.EventFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list day events: %w", err)
	}
	return events, nil
}
