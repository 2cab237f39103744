package domain

import (
	"context"
	"encoding/json"
	"time"
)

// InlineButton is a single callback button attached to a chat message.
type InlineButton struct {
	Text string
	Data string
}

// CallbackDeleteEvent prefixes the callback payload of the delete button: "delete_event:<id>".
const CallbackDeleteEvent = "delete_event:"

// Messenger is the outbound chat collaborator.
type Messenger interface {
	// Send delivers text (HTML) to one chat and returns the new message id.
	Send(ctx context.Context, chatID int64, text string, buttons ...InlineButton) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	// AckCallback stops the client spinner on a pressed inline button.
	AckCallback(ctx context.Context, callbackID string) error
	// FileURL resolves an uploaded file (e.g. a voice note) to a downloadable URL.
	FileURL(ctx context.Context, fileID string) (string, error)
}

type NotificationKind string

const (
	NotificationNewEvent    NotificationKind = "new_event"
	NotificationReminder    NotificationKind = "reminder"
	NotificationDailyDigest NotificationKind = "daily_digest"
)

// MaxNotificationAttempts bounds outbox redelivery.
const MaxNotificationAttempts = 5

// Notification is an outbox row: a domain event waiting to be fanned out to chats.
// Only NotificationNewEvent is stored; the other kinds are sent synchronously.
type Notification struct {
	ID            string           `json:"id"`
	Kind          NotificationKind `json:"kind"`
	Payload       json.RawMessage  `json:"payload"`
	ExcludeChatID *int64           `json:"exclude_chat_id"`
	Attempts      int              `json:"attempts"`
	LastError     *string          `json:"last_error"`
	CreatedAt     time.Time        `json:"created_at"`
	DispatchedAt  *time.Time       `json:"dispatched_at"`
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, n *Notification) error
	// Pending returns undispatched rows below MaxNotificationAttempts, oldest first.
	Pending(ctx context.Context, limit int) ([]*Notification, error)
	MarkDispatched(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, errText string) error
}

// BroadcastResult reports a fan-out to every configured chat.
// OK is true only when every recipient accepted the message.
type BroadcastResult struct {
	OK     bool
	Sent   int
	Failed int
}

// Notifier owns chat fan-out and the notification outbox.
type Notifier interface {
	EnqueueNewEvent(ctx context.Context, event *Event, excludeChatID *int64) error
	Broadcast(ctx context.Context, kind NotificationKind, text string, excludeChatID *int64) BroadcastResult
	DispatchPending(ctx context.Context) (int, error)
}

// ReminderResult is the per-event outcome of a reminder check.
type ReminderResult struct {
	EventID string `json:"event_id"`
	Title   string `json:"title"`
	Sent    bool   `json:"sent"`
}

// ReminderReport is returned by a reminder check run.
type ReminderReport struct {
	Success          bool             `json:"success"`
	Disabled         bool             `json:"disabled,omitempty"`
	RemindersChecked int              `json:"reminders_checked"`
	RemindersSent    int              `json:"reminders_sent"`
	Results          []ReminderResult `json:"results"`
}

// DigestReport is returned by a daily digest run.
type DigestReport struct {
	Success    bool   `json:"success"`
	Disabled   bool   `json:"disabled,omitempty"`
	EventCount int    `json:"event_count"`
	Message    string `json:"message,omitempty"`
}

// ScheduleService runs the time-window notification jobs.
type ScheduleService interface {
	CheckReminders(ctx context.Context) (*ReminderReport, error)
	SendDailyDigest(ctx context.Context) (*DigestReport, error)
	// DaySummary and WeekSummary build the chat text for the /today, /tomorrow and /week commands.
	DaySummary(ctx context.Context, day time.Time) (string, error)
	WeekSummary(ctx context.Context, ref time.Time) (string, error)
}
