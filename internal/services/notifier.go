package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"familycal/internal/domain"
	"familycal/internal/metrics"
)

const (
	outboxBatchSize = 20
	maxParallelSend = 8
)

// Notifier fans chat messages out to every configured chat and drains the
// notification outbox. A nil messenger or an empty chat list disables it.
type Notifier struct {
	messenger domain.Messenger
	outbox    domain.OutboxRepository
	family    domain.Family
	chatIDs   []int64
	metrics   *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time

	dispatchMu sync.Mutex
	kick       chan struct{}
}

var _ domain.Notifier = (*Notifier)(nil)

func NewNotifier(
	messenger domain.Messenger,
	outbox domain.OutboxRepository,
	family domain.Family,
	chatIDs []int64,
	collector *metrics.Collector,
	logger *slog.Logger,
) *Notifier {
	return &Notifier{
		messenger: messenger,
		outbox:    outbox,
		family:    family,
		chatIDs:   chatIDs,
		metrics:   collector,
		logger:    logger,
		now:       time.Now,
		kick:      make(chan struct{}, 1),
	}
}

func (n *Notifier) enabled() bool {
	return n.messenger != nil && len(n.chatIDs) > 0
}

// EnqueueNewEvent stores a new_event notification and wakes the dispatcher.
func (n *Notifier) EnqueueNewEvent(ctx context.Context, event *domain.Event, excludeChatID *int64) error {
	if !n.enabled() {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	note := &domain.Notification{
		ID:            uuid.NewString(),
		Kind:          domain.NotificationNewEvent,
		Payload:       payload,
		ExcludeChatID: excludeChatID,
		CreatedAt:     n.now(),
	}
	if err := n.outbox.Enqueue(ctx, note); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	select {
	case n.kick <- struct{}{}:
	default:
	}
	return nil
}

// Broadcast sends text to every chat except excludeChatID, concurrently.
// A broadcast with no recipients left is OK.
func (n *Notifier) Broadcast(ctx context.Context, kind domain.NotificationKind, text string, excludeChatID *int64) domain.BroadcastResult {
	if !n.enabled() {
		return domain.BroadcastResult{}
	}
	targets := slices.DeleteFunc(slices.Clone(n.chatIDs), func(id int64) bool {
		return excludeChatID != nil && id == *excludeChatID
	})

	var sent, failed atomic.Int32
	var g errgroup.Group
	g.SetLimit(maxParallelSend)
	for _, chatID := range targets {
		g.Go(func() error {
			if _, err := n.messenger.Send(ctx, chatID, text); err != nil {
				failed.Add(1)
				n.count(kind, false)
				n.logger.WarnContext(ctx, "chat send failed", "kind", kind, "chat_id", chatID, "err", err)
				return err
			}
			sent.Add(1)
			n.count(kind, true)
			return nil
		})
	}
	_ = g.Wait()

	return domain.BroadcastResult{
		OK:     failed.Load() == 0,
		Sent:   int(sent.Load()),
		Failed: int(failed.Load()),
	}
}

// DispatchPending delivers one batch of outbox rows and returns how many were dispatched.
// Rows that fail stay pending until MaxNotificationAttempts is reached.
func (n *Notifier) DispatchPending(ctx context.Context) (int, error) {
	if !n.enabled() {
		return 0, nil
	}
	n.dispatchMu.Lock()
	defer n.dispatchMu.Unlock()

	pending, err := n.outbox.Pending(ctx, outboxBatchSize)
	if err != nil {
		return 0, fmt.Errorf("load pending notifications: %w", err)
	}
	dispatched := 0
	for _, note := range pending {
		if err := n.deliver(ctx, note); err != nil {
			n.logger.WarnContext(ctx, "notification delivery failed",
				"id", note.ID, "kind", note.Kind, "attempt", note.Attempts+1, "err", err)
			if markErr := n.outbox.MarkFailed(ctx, note.ID, err.Error()); markErr != nil {
				n.logger.ErrorContext(ctx, "mark notification failed", "id", note.ID, "err", markErr)
			}
			continue
		}
		if err := n.outbox.MarkDispatched(ctx, note.ID, n.now()); err != nil {
			n.logger.ErrorContext(ctx, "mark notification dispatched", "id", note.ID, "err", err)
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

func (n *Notifier) deliver(ctx context.Context, note *domain.Notification) error {
	var text string
	switch note.Kind {
	case domain.NotificationNewEvent:
		var event domain.Event
		if err := json.Unmarshal(note.Payload, &event); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		text = NewEventMessage(n.family, &event)
	default:
		return fmt.Errorf("unknown notification kind %q", note.Kind)
	}
	res := n.Broadcast(ctx, note.Kind, text, note.ExcludeChatID)
	if !res.OK {
		return fmt.Errorf("delivered to %d of %d chats", res.Sent, res.Sent+res.Failed)
	}
	return nil
}

// Run dispatches the outbox each time a notification is enqueued, until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.kick:
			if _, err := n.DispatchPending(ctx); err != nil {
				n.logger.ErrorContext(ctx, "outbox dispatch failed", "err", err)
			}
		}
	}
}

func (n *Notifier) count(kind domain.NotificationKind, ok bool) {
	if n.metrics == nil {
		return
	}
	if ok {
		n.metrics.NotificationSent(string(kind))
	} else {
		n.metrics.NotificationFailed(string(kind))
	}
}
