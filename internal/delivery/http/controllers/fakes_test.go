package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"familycal/internal/calendar"
	"familycal/internal/delivery/http/helpers"
	"familycal/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func testFamily() domain.Family {
	return domain.Family{
		Members:       []domain.Member{{Name: "dana", Emoji: "👩"}, {Name: "omer", Emoji: "👦"}},
		Categories:    domain.DefaultCategories,
		DefaultPerson: "dana",
		Everyone:      domain.DefaultEveryone,
		Location:      time.UTC,
		WeekStart:     time.Sunday,
	}
}

func intPtr(n int) *int { return &n }

// decodeEnvelope decodes the API envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if dest != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env.Error
}

type fakeEventService struct {
	events      []*domain.Event
	err         error
	lastFilter  domain.EventFilter
	lastCreated *domain.Event
	lastUpdated *domain.Event
	lastDeleted string
	lastMove    struct {
		id   string
		day  time.Time
		hour int
	}
}

func (f *fakeEventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.lastFilter = filter
	return f.events, f.err
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event, excludeChatID *int64) error {
	if f.err != nil {
		return f.err
	}
	event.ID = "evt-1"
	f.lastCreated = event
	return nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	f.lastUpdated = event
	if f.err != nil {
		return nil, f.err
	}
	return event, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id string) error {
	f.lastDeleted = id
	return f.err
}

func (f *fakeEventService) MoveEvent(ctx context.Context, id string, day time.Time, hour int) (*domain.Event, error) {
	f.lastMove.id, f.lastMove.day, f.lastMove.hour = id, day, hour
	if f.err != nil {
		return nil, f.err
	}
	start := day.Add(time.Duration(hour) * time.Hour)
	return &domain.Event{ID: id, StartTime: start, EndTime: start.Add(time.Hour)}, nil
}

type fakeAnnouncementService struct {
	list      []*domain.Announcement
	err       error
	lastText  string
	lastColor *int
	deleted   string
}

func (f *fakeAnnouncementService) ListAnnouncements(ctx context.Context) ([]*domain.Announcement, error) {
	return f.list, f.err
}

func (f *fakeAnnouncementService) CreateAnnouncement(ctx context.Context, text string, color *int) (*domain.Announcement, error) {
	f.lastText, f.lastColor = text, color
	if f.err != nil {
		return nil, f.err
	}
	c := 0
	if color != nil {
		c = *color
	}
	return &domain.Announcement{ID: "ann-1", Text: text, Color: c}, nil
}

func (f *fakeAnnouncementService) DeleteAnnouncement(ctx context.Context, id string) error {
	f.deleted = id
	return f.err
}

type fakeParseService struct {
	parsed *domain.ParsedEvent
	err    error
}

func (f *fakeParseService) ParseEvent(ctx context.Context, text string) (*domain.ParsedEvent, error) {
	return f.parsed, f.err
}

type fakeCalendarService struct {
	err        error
	lastState  calendar.State
	lastPeople []string
	lastText   string
	lastSaveID string
}

func (f *fakeCalendarService) View(ctx context.Context, st calendar.State, people []string) (*calendar.View, error) {
	f.lastState, f.lastPeople = st, people
	if f.err != nil {
		return nil, f.err
	}
	return &calendar.View{Mode: st.Mode, Date: st.Date, Conflicts: []string{}}, nil
}

func (f *fakeCalendarService) NewDialog(day time.Time, hour *int) (*calendar.Dialog, error) {
	d := calendar.NewDialog(testFamily())
	if err := d.OpenCreate(day, hour); err != nil {
		return nil, err
	}
	return d, nil
}

func (f *fakeCalendarService) EditDialog(ctx context.Context, eventID string) (*calendar.Dialog, error) {
	if eventID != "e1" {
		return nil, domain.ErrNotFound
	}
	d := calendar.NewDialog(testFamily())
	err := d.OpenEdit(&domain.Event{
		ID: "e1", Title: "Gym", Person: "dana", Category: "training",
		StartTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	})
	return d, err
}

func (f *fakeCalendarService) AssistDialog(ctx context.Context, day time.Time, hour *int, text string) (*calendar.Dialog, error) {
	f.lastText = text
	d, err := f.NewDialog(day, hour)
	if err != nil {
		return nil, err
	}
	_ = d.BeginParse()
	_ = d.FailParse("Could not parse AI response")
	return d, nil
}

func (f *fakeCalendarService) SaveDialog(ctx context.Context, eventID string, draft calendar.Draft) (*domain.Event, error) {
	f.lastSaveID = eventID
	if f.err != nil {
		return nil, f.err
	}
	e, err := draft.ToEvent(time.UTC)
	if err != nil {
		return nil, err
	}
	e.ID = eventID
	return e, nil
}

func (f *fakeCalendarService) Family() domain.Family { return testFamily() }

type fakeExporter struct {
	events []*domain.Event
}

func (f *fakeExporter) Write(w io.Writer, events []*domain.Event) error {
	f.events = events
	_, err := io.WriteString(w, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	return err
}

type fakeScheduleService struct {
	reminders *domain.ReminderReport
	digest    *domain.DigestReport
	err       error
}

func (f *fakeScheduleService) CheckReminders(ctx context.Context) (*domain.ReminderReport, error) {
	return f.reminders, f.err
}

func (f *fakeScheduleService) SendDailyDigest(ctx context.Context) (*domain.DigestReport, error) {
	return f.digest, f.err
}

func (f *fakeScheduleService) DaySummary(ctx context.Context, day time.Time) (string, error) {
	return "", nil
}

func (f *fakeScheduleService) WeekSummary(ctx context.Context, ref time.Time) (string, error) {
	return "", nil
}

type fakeUpdateHandler struct {
	updates []tgbotapi.Update
}

func (f *fakeUpdateHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	f.updates = append(f.updates, update)
}

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(ctx context.Context) error { return f.err }
