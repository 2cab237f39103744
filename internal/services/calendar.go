package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"familycal/internal/calendar"
	"familycal/internal/domain"
)

// CalendarService renders calendar views and drives the create/edit dialog.
type CalendarService struct {
	eventRepo      domain.EventRepository
	events         domain.EventService
	parser         domain.ParseService
	family         domain.Family
	renderer       *calendar.Renderer
	contextTimeout time.Duration
	now            func() time.Time
}

func NewCalendarService(
	eventRepo domain.EventRepository,
	events domain.EventService,
	parser domain.ParseService,
	family domain.Family,
	timeout time.Duration,
) *CalendarService {
	return &CalendarService{
		eventRepo:      eventRepo,
		events:         events,
		parser:         parser,
		family:         family,
		renderer:       calendar.NewRenderer(family),
		contextTimeout: timeout,
		now:            time.Now,
	}
}

// View fetches the padded window around st, applies the person filter
// (nil people disables it) and renders the view.
func (s *CalendarService) View(ctx context.Context, st calendar.State, people []string) (*calendar.View, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	from, to := st.FetchWindow(s.family.Loc(), s.family.WeekStart)
	events, err := s.eventRepo.List(ctx, domain.EventFilter{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	visible := calendar.FilterByPeople(events, people, s.family.EveryoneName())
	view := s.renderer.Render(st, visible)
	return &view, nil
}

// NewDialog opens a create dialog on day (at hour when given).
func (s *CalendarService) NewDialog(day time.Time, hour *int) (*calendar.Dialog, error) {
	d := calendar.NewDialog(s.family)
	if err := d.OpenCreate(day, hour); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return d, nil
}

// EditDialog opens an edit dialog prefilled from the stored event.
func (s *CalendarService) EditDialog(ctx context.Context, eventID string) (*calendar.Dialog, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	d := calendar.NewDialog(s.family)
	if err := d.OpenEdit(e); err != nil {
		return nil, err
	}
	return d, nil
}

// AssistDialog opens a create dialog on day and fills it from free text.
// A parse failure is recorded on the dialog rather than returned.
func (s *CalendarService) AssistDialog(ctx context.Context, day time.Time, hour *int, text string) (*calendar.Dialog, error) {
	d, err := s.NewDialog(day, hour)
	if err != nil {
		return nil, err
	}
	if err := d.BeginParse(); err != nil {
		return nil, err
	}
	parsed, err := s.parser.ParseEvent(ctx, text)
	if err != nil {
		if ferr := d.FailParse(assistErrorMessage(err)); ferr != nil {
			return nil, ferr
		}
		return d, nil
	}
	if err := d.ApplyParsed(parsed); err != nil {
		return nil, err
	}
	return d, nil
}

func assistErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrAINotConfigured):
		return "Missing API key"
	case errors.Is(err, domain.ErrNoAIResponse):
		return "No response from AI"
	case errors.Is(err, domain.ErrUnparsableAIResponse):
		return "Could not parse AI response"
	case errors.Is(err, domain.ErrValidation):
		return "Enter a description first"
	default:
		return "Parsing failed"
	}
}

// SaveDialog validates a draft and stores it: an update when eventID is set,
// otherwise a new event.
func (s *CalendarService) SaveDialog(ctx context.Context, eventID string, draft calendar.Draft) (*domain.Event, error) {
	var d *calendar.Dialog
	var err error
	if eventID == "" {
		d, err = s.NewDialog(s.now(), nil)
	} else {
		d, err = s.EditDialog(ctx, eventID)
	}
	if err != nil {
		return nil, err
	}
	d.Draft = draft
	e, err := d.Save()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if eventID == "" {
		if err := s.events.CreateEvent(ctx, e, nil); err != nil {
			return nil, err
		}
		return e, nil
	}
	return s.events.UpdateEvent(ctx, e)
}

func (s *CalendarService) Family() domain.Family {
	return s.family
}
