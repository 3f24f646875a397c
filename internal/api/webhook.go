package api

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// UpdateSink accepts raw Telegram updates posted to the webhook.
type UpdateSink interface {
	Push(ctx context.Context, u tgbotapi.Update) error
}

// WebhookHandler receives updates when TRANSPORT=webhook.
type WebhookHandler struct {
	secret string
	sink   UpdateSink
	logger *zap.Logger
}

// NewWebhookHandler creates a handler that accepts updates posted under secret.
func NewWebhookHandler(secret string, sink UpdateSink, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{secret: secret, sink: sink, logger: logger}
}

// Receive handles POST /telegram/webhook/:secret
//
// A wrong secret gets a 404 so the path cannot be discovered. Telegram retries
// anything that is not a 2xx, so a sink that is shutting down answers 503
// and the update is redelivered after restart.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(h.secret)) != 1 {
		c.Status(http.StatusNotFound)
		return
	}

	var u tgbotapi.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}

	if err := h.sink.Push(c.Request.Context(), u); err != nil {
		h.logger.Warn("webhook update not accepted", zap.Int("telegram_update_id", u.UpdateID), zap.Error(err))
		c.Status(http.StatusServiceUnavailable)
		return
	}

	c.Status(http.StatusOK)
}
