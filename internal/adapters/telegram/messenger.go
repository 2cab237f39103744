// Package telegram implements domain.Messenger over the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"familycal/internal/domain"
)

// Commands are registered with Telegram so clients can autocomplete them.
var Commands = []tgbotapi.BotCommand{
	{Command: "today", Description: "Today's schedule"},
	{Command: "tomorrow", Description: "Tomorrow's schedule"},
	{Command: "week", Description: "This week's schedule"},
	{Command: "site", Description: "Link to the calendar"},
	{Command: "help", Description: "Help"},
}

const requestTimeout = 30 * time.Second

type Config struct {
	Token string
	// Endpoint overrides tgbotapi.APIEndpoint; it must contain two %s verbs (token, method).
	Endpoint string
}

type Messenger struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

var _ domain.Messenger = (*Messenger)(nil)

// NewMessenger authenticates the token with getMe.
func NewMessenger(cfg Config, logger *slog.Logger) (*Messenger, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	_ = tgbotapi.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{Timeout: requestTimeout})
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	logger.Info("telegram bot authorized", "username", bot.Self.UserName)
	return &Messenger{bot: bot, logger: logger}, nil
}

// Username returns the bot's @name without the at sign.
func (m *Messenger) Username() string {
	return m.bot.Self.UserName
}

// RegisterCommands publishes the command list shown in Telegram clients.
func (m *Messenger) RegisterCommands() error {
	if _, err := m.bot.Request(tgbotapi.NewSetMyCommands(Commands...)); err != nil {
		return fmt.Errorf("set commands: %w", err)
	}
	return nil
}

func (m *Messenger) Send(ctx context.Context, chatID int64, text string, buttons ...domain.InlineButton) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if len(buttons) > 0 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
		for _, b := range buttons {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	}
	sent, err := m.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

func (m *Messenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := m.bot.Request(edit); err != nil {
		return fmt.Errorf("edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (m *Messenger) AckCallback(ctx context.Context, callbackID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := m.bot.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// FileURL resolves fileID to a download URL. The URL embeds the bot token and must not be logged.
func (m *Messenger) FileURL(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	url, err := m.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("get file %s: %w", fileID, err)
	}
	return url, nil
}
