package controllers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"familycal/internal/delivery/http/helpers"
)

const maxUpdateBytes = 1 << 20

// UpdateHandler processes one chat update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// WebhookAck is the body returned to the chat platform on every webhook call.
type WebhookAck struct {
	OK bool `json:"ok"`
}

type WebhookController struct {
	Logger  *slog.Logger
	Handler UpdateHandler
}

func NewWebhookController(logger *slog.Logger, handler UpdateHandler) *WebhookController {
	return &WebhookController{Logger: logger, Handler: handler}
}

// TelegramWebhook godoc
// @Summary Telegram webhook
// @Description Handles commands, free-text event creation, voice notes and delete buttons. Always answers 200 so the platform does not redeliver.
// @Tags bot
// @Accept json
// @Produce json
// @Success 200 {object} helpers.APIResponse "data: {ok: true}"
// @Router /telegram/webhook [post]
func (c *WebhookController) TelegramWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		c.Logger.WarnContext(r.Context(), "undecodable webhook update", "err", err)
		helpers.WriteJSONSuccess(w, http.StatusOK, WebhookAck{OK: true})
		return
	}
	c.Handler.HandleUpdate(r.Context(), update)
	helpers.WriteJSONSuccess(w, http.StatusOK, WebhookAck{OK: true})
}
