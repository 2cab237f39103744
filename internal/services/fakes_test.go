package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"familycal/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testFamily() domain.Family {
	return domain.Family{
		Members: []domain.Member{
			{Name: "dana", Emoji: "👩"},
			{Name: "omer", Emoji: "👦"},
		},
		Categories:    domain.DefaultCategories,
		DefaultPerson: "dana",
		Everyone:      "everyone",
		Location:      time.UTC,
		WeekStart:     time.Sunday,
	}
}

func ts(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func intPtr(v int) *int { return &v }

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	createErr error
	listErr   error
	filters   []domain.EventFilter
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event)}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) sorted() []*domain.Event {
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *domain.Event) int { return a.StartTime.Compare(b.StartTime) })
	return out
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	f.filters = append(f.filters, filter)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Event
	for _, e := range f.sorted() {
		if filter.From != nil && e.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.StartTime.After(*filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) ListWithReminders(ctx context.Context, since time.Time) ([]*domain.Event, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Event
	for _, e := range f.sorted() {
		if e.ReminderMinutes != nil && !e.StartTime.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeAnnouncementRepo struct {
	items []*domain.Announcement
	err   error
}

func (f *fakeAnnouncementRepo) List(ctx context.Context) ([]*domain.Announcement, error) {
	return f.items, f.err
}

func (f *fakeAnnouncementRepo) Create(ctx context.Context, a *domain.Announcement) error {
	if f.err != nil {
		return f.err
	}
	f.items = append([]*domain.Announcement{a}, f.items...)
	return nil
}

func (f *fakeAnnouncementRepo) Delete(ctx context.Context, id string) error {
	for i, a := range f.items {
		if a.ID == id {
			f.items = slices.Delete(f.items, i, i+1)
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeOutbox keeps rows in insertion order.
type fakeOutbox struct {
	rows       []*domain.Notification
	enqueueErr error
}

func (f *fakeOutbox) Enqueue(ctx context.Context, n *domain.Notification) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeOutbox) Pending(ctx context.Context, limit int) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range f.rows {
		if n.DispatchedAt == nil && n.Attempts < domain.MaxNotificationAttempts && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	for _, n := range f.rows {
		if n.ID == id {
			n.Attempts++
			n.DispatchedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, errText string) error {
	for _, n := range f.rows {
		if n.ID == id {
			n.Attempts++
			n.LastError = &errText
			return nil
		}
	}
	return domain.ErrNotFound
}

type sentMessage struct {
	ChatID  int64
	Text    string
	Buttons []domain.InlineButton
}

// fakeMessenger records sends; chats listed in failFor return an error.
type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]bool
}

func (f *fakeMessenger) Send(ctx context.Context, chatID int64, text string, buttons ...domain.InlineButton) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return 0, fmt.Errorf("chat %d unreachable", chatID)
	}
	f.sent = append(f.sent, sentMessage{ChatID: chatID, Text: text, Buttons: buttons})
	return len(f.sent), nil
}

func (f *fakeMessenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	return nil
}

func (f *fakeMessenger) AckCallback(ctx context.Context, callbackID string) error {
	return nil
}

func (f *fakeMessenger) FileURL(ctx context.Context, fileID string) (string, error) {
	return "", nil
}

func (f *fakeMessenger) chats() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int64
	for _, m := range f.sent {
		out = append(out, m.ChatID)
	}
	slices.Sort(out)
	return out
}

type broadcastCall struct {
	Kind    domain.NotificationKind
	Text    string
	Exclude *int64
}

type fakeNotifier struct {
	enqueued   []*domain.Event
	excluded   []*int64
	enqueueErr error
	broadcasts []broadcastCall
	result     domain.BroadcastResult
}

func (f *fakeNotifier) EnqueueNewEvent(ctx context.Context, e *domain.Event, excludeChatID *int64) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueued = append(f.enqueued, e)
	f.excluded = append(f.excluded, excludeChatID)
	return nil
}

func (f *fakeNotifier) Broadcast(ctx context.Context, kind domain.NotificationKind, text string, excludeChatID *int64) domain.BroadcastResult {
	f.broadcasts = append(f.broadcasts, broadcastCall{Kind: kind, Text: text, Exclude: excludeChatID})
	return f.result
}

func (f *fakeNotifier) DispatchPending(ctx context.Context) (int, error) {
	return 0, nil
}

type fakeModel struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeModel) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	f.system, f.user = systemPrompt, userText
	return f.reply, f.err
}

type fakeEmailService struct {
	sent []*domain.DailyDigestEmailData
	err  error
}

func (f *fakeEmailService) SendDailyDigest(ctx context.Context, data *domain.DailyDigestEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

type mailCall struct {
	To, Subject, HTML, Text string
}

type fakeMailer struct {
	calls []mailCall
	err   error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, mailCall{To: to, Subject: subject, HTML: html, Text: text})
	return nil
}

type fakeRenderer struct {
	name string
	err  error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	f.name = name
	if f.err != nil {
		return "", "", "", f.err
	}
	return "subject", "<p>html</p>", "text", nil
}
