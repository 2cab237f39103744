package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"familycal/internal/calendar"
	"familycal/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	notifier       domain.Notifier
	family         domain.Family
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(eventRepo domain.EventRepository,
	notifier domain.Notifier,
	family domain.Family,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		notifier:       notifier,
		family:         family,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.eventRepo.GetByID(ctx, id)
}

// CreateEvent stores the event, then enqueues a new-event notification.
// A failed enqueue is logged and does not fail the create.
func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, excludeChatID *int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateEvent(event); err != nil {
		return err
	}
	now := s.now()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	if s.notifier != nil {
		if err := s.notifier.EnqueueNewEvent(ctx, event, excludeChatID); err != nil {
			s.logger.WarnContext(ctx, "new event notification not queued", "event_id", event.ID, "err", err)
		}
	}
	return nil
}

func (s *eventService) UpdateEvent(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateEvent(event); err != nil {
		return nil, err
	}
	event.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// MoveEvent drops the event at hour:00 on day, keeping its duration.
func (s *eventService) MoveEvent(ctx context.Context, id string, day time.Time, hour int) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	current, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	moved, err := calendar.Move(current, day, hour, s.family.Loc())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	moved.UpdatedAt = s.now()
	if err := s.eventRepo.Update(ctx, moved); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return moved, nil
}

func validateEvent(e *domain.Event) error {
	var missing []string
	if strings.TrimSpace(e.Title) == "" {
		missing = append(missing, "title")
	}
	if e.Person == "" {
		missing = append(missing, "person")
	}
	if e.Category == "" {
		missing = append(missing, "category")
	}
	if e.StartTime.IsZero() {
		missing = append(missing, "start_time")
	}
	if e.EndTime.IsZero() {
		missing = append(missing, "end_time")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
