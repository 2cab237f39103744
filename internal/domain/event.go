package domain

import (
	"context"
	"time"
)

// Event is a single entry on the family calendar.
// End is expected to be after Start but this is not enforced.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Person          string    `json:"person"`
	Category        string    `json:"category"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Recurring       bool      `json:"recurring"`
	ReminderMinutes *int      `json:"reminder_minutes"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Duration returns EndTime - StartTime. It may be negative for malformed events.
func (e *Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// HasReminder reports whether a positive reminder lead time is set.
func (e *Event) HasReminder() bool {
	return e.ReminderMinutes != nil && *e.ReminderMinutes > 0
}

// ReminderAt returns the instant the reminder is due. Only meaningful when HasReminder is true.
func (e *Event) ReminderAt() time.Time {
	if e.ReminderMinutes == nil {
		return e.StartTime
	}
	return e.StartTime.Add(-time.Duration(*e.ReminderMinutes) * time.Minute)
}

// EventFilter restricts List to events whose start instant lies in [From, To]. Nil bounds are open.
type EventFilter struct {
	From *time.Time
	To   *time.Time
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListWithReminders(ctx context.Context, since time.Time) ([]*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
}

// EventService defines the business logic for calendar events.
// CreateEvent enqueues a new-event notification; excludeChatID, when set,
// is left out of the broadcast (the chat the event came from).
type EventService interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, event *Event, excludeChatID *int64) error
	UpdateEvent(ctx context.Context, event *Event) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	MoveEvent(ctx context.Context, id string, day time.Time, hour int) (*Event, error)
}
