// Package bot turns inbound chat updates into calendar operations.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"familycal/internal/domain"
	"familycal/internal/services"
)

const (
	maxVoiceBytes    = 20 << 20
	voiceFilename    = "voice.ogg"
	downloadTimeout  = 30 * time.Second
	deleteButtonText = "🗑 Delete"
)

const (
	msgProcessing      = "⏳ Processing..."
	msgProcessingVoice = "🎤 Processing voice message..."
	msgNotUnderstood   = "❌ Could not understand the event. Try again with more detail."
	msgBadDateTime     = "❌ Could not understand the date or time."
	msgAIUnavailable   = "❌ Event parsing is not configured."
	msgSaveFailed      = "❌ Could not save the event."
	msgVoiceFailed     = "❌ Could not process the voice message."
	msgVoiceDisabled   = "❌ Voice messages are not supported."
	msgEventDeleted    = "🗑 Event deleted"
	msgDeleteFailed    = "❌ Delete failed"
	msgFetchFailed     = "❌ Could not load the schedule."
	msgNoSite          = "The calendar site address is not configured."
)

const helpText = `👋 <b>Family calendar bot</b>

Send a message describing an event and it goes on the calendar, for example:
<i>Dana swimming tomorrow at 17:00, remind me 30 minutes before</i>

Voice messages work too.

/today - today's schedule
/tomorrow - tomorrow's schedule
/week - this week's schedule
/site - link to the calendar
/help - this message`

// Config carries the bot's static settings.
type Config struct {
	Family domain.Family
	AppURL string
	// Username is the bot's own handle; commands addressed to another bot are ignored.
	Username string
}

// Handler dispatches webhook updates. Transcriber may be nil, which disables voice input.
type Handler struct {
	messenger   domain.Messenger
	events      domain.EventService
	parser      domain.ParseService
	transcriber domain.Transcriber
	schedule    domain.ScheduleService
	cfg         Config
	httpClient  *http.Client
	logger      *slog.Logger
	now         func() time.Time
}

func NewHandler(
	messenger domain.Messenger,
	events domain.EventService,
	parser domain.ParseService,
	transcriber domain.Transcriber,
	schedule domain.ScheduleService,
	cfg Config,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		messenger:   messenger,
		events:      events,
		parser:      parser,
		transcriber: transcriber,
		schedule:    schedule,
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: downloadTimeout},
		logger:      logger,
		now:         time.Now,
	}
}

// HandleUpdate processes one update. Failures are answered in the chat, never returned.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if h.messenger == nil {
		return
	}
	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	switch {
	case msg.Voice != nil:
		h.handleVoice(ctx, msg.Chat.ID, msg.Voice.FileID)
	case msg.IsCommand():
		h.handleCommand(ctx, msg)
	case strings.TrimSpace(msg.Text) != "":
		h.addEvent(ctx, msg.Chat.ID, msg.Text)
	}
}

func (h *Handler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if err := h.messenger.AckCallback(ctx, cq.ID); err != nil {
		h.logger.WarnContext(ctx, "ack callback failed", "err", err)
	}
	id, ok := strings.CutPrefix(cq.Data, domain.CallbackDeleteEvent)
	if !ok || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	text := msgEventDeleted
	if err := h.events.DeleteEvent(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "delete from chat failed", "event_id", id, "err", err)
		text = msgDeleteFailed
	}
	if err := h.messenger.Edit(ctx, cq.Message.Chat.ID, cq.Message.MessageID, text); err != nil {
		h.logger.WarnContext(ctx, "edit message failed", "err", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if at := strings.Index(msg.CommandWithAt(), "@"); at >= 0 && h.cfg.Username != "" {
		if !strings.EqualFold(msg.CommandWithAt()[at+1:], h.cfg.Username) {
			return
		}
	}
	chatID := msg.Chat.ID
	now := h.now().In(h.cfg.Family.Loc())
	switch msg.Command() {
	case "today":
		h.replySummary(ctx, chatID, func() (string, error) { return h.schedule.DaySummary(ctx, now) })
	case "tomorrow":
		h.replySummary(ctx, chatID, func() (string, error) { return h.schedule.DaySummary(ctx, now.AddDate(0, 0, 1)) })
	case "week":
		h.replySummary(ctx, chatID, func() (string, error) { return h.schedule.WeekSummary(ctx, now) })
	case "site":
		if h.cfg.AppURL == "" {
			h.reply(ctx, chatID, msgNoSite)
			return
		}
		h.reply(ctx, chatID, fmt.Sprintf("🌐 <a href=\"%s\">Open the family calendar</a>", services.EscapeHTML(h.cfg.AppURL)))
	default:
		h.reply(ctx, chatID, helpText)
	}
}

func (h *Handler) replySummary(ctx context.Context, chatID int64, build func() (string, error)) {
	text, err := build()
	if err != nil {
		h.logger.ErrorContext(ctx, "build schedule summary failed", "err", err)
		h.reply(ctx, chatID, msgFetchFailed)
		return
	}
	h.reply(ctx, chatID, text)
}

func (h *Handler) handleVoice(ctx context.Context, chatID int64, fileID string) {
	if h.transcriber == nil {
		h.reply(ctx, chatID, msgVoiceDisabled)
		return
	}
	h.reply(ctx, chatID, msgProcessingVoice)

	text, err := h.transcribe(ctx, fileID)
	if err != nil {
		h.logger.ErrorContext(ctx, "voice transcription failed", "err", err)
		h.reply(ctx, chatID, msgVoiceFailed)
		return
	}
	if text == "" {
		h.reply(ctx, chatID, msgVoiceFailed)
		return
	}
	h.reply(ctx, chatID, fmt.Sprintf("🎤 I heard: <i>%s</i>", services.EscapeHTML(text)))
	h.addEvent(ctx, chatID, text)
}

func (h *Handler) transcribe(ctx context.Context, fileID string) (string, error) {
	url, err := h.messenger.FileURL(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download voice: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download voice: status %d", resp.StatusCode)
	}
	text, err := h.transcriber.Transcribe(ctx, io.LimitReader(resp.Body, maxVoiceBytes), voiceFilename)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// addEvent parses free text into an event, saves it and confirms with a delete button.
// The new-event broadcast skips the originating chat.
func (h *Handler) addEvent(ctx context.Context, chatID int64, text string) {
	h.reply(ctx, chatID, msgProcessing)

	parsed, err := h.parser.ParseEvent(ctx, text)
	if err != nil {
		h.logger.WarnContext(ctx, "parse from chat failed", "err", err)
		h.reply(ctx, chatID, parseFailureMessage(err))
		return
	}
	event, err := parsed.ToEvent(h.cfg.Family.Loc())
	if err != nil {
		h.reply(ctx, chatID, msgBadDateTime)
		return
	}
	if err := h.events.CreateEvent(ctx, event, &chatID); err != nil {
		h.logger.ErrorContext(ctx, "create from chat failed", "err", err)
		h.reply(ctx, chatID, msgSaveFailed)
		return
	}
	h.reply(ctx, chatID, services.EventAddedMessage(h.cfg.Family, event), domain.InlineButton{
		Text: deleteButtonText,
		Data: domain.CallbackDeleteEvent + event.ID,
	})
}

func parseFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrAINotConfigured):
		return msgAIUnavailable
	case errors.Is(err, domain.ErrInvalidDateTime):
		return msgBadDateTime
	default:
		return msgNotUnderstood
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, buttons ...domain.InlineButton) {
	if _, err := h.messenger.Send(ctx, chatID, text, buttons...); err != nil {
		h.logger.WarnContext(ctx, "reply failed", "chat_id", chatID, "err", err)
	}
}
