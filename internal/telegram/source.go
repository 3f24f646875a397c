package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lalith-99/autoapprove/internal/bot"
	"go.uber.org/zap"
)

// ErrSourceClosed is returned by WebhookSource.Push after Close.
var ErrSourceClosed = errors.New("update source closed")

// Poller reads updates with getUpdates long polling.
type Poller struct {
	api     *tgbotapi.BotAPI
	timeout int
	buffer  int
	logger  *zap.Logger
}

// NewPoller creates a Poller with a long-poll timeout in seconds.
func NewPoller(api *tgbotapi.BotAPI, timeoutSeconds, buffer int, logger *zap.Logger) *Poller {
	return &Poller{api: api, timeout: timeoutSeconds, buffer: buffer, logger: logger}
}

// Start begins polling and returns the translated update stream. The
// stream is closed once ctx is done and the in-flight poll has returned.
func (p *Poller) Start(ctx context.Context) <-chan bot.Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	cfg.AllowedUpdates = AllowedUpdates

	in := p.api.GetUpdatesChan(cfg)
	out := make(chan bot.Update, p.buffer)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				p.api.StopReceivingUpdates()
				p.logger.Info("long polling stopped")
				return
			case raw, ok := <-in:
				if !ok {
					return
				}
				u, ok := Translate(raw)
				if !ok {
					continue
				}
				select {
				case out <- u:
				case <-ctx.Done():
					p.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()

	p.logger.Info("long polling started", zap.Int("timeout_seconds", p.timeout))
	return out
}

// WebhookSource is fed by the HTTP webhook handler and read by the
// dispatcher.
type WebhookSource struct {
	out    chan bot.Update
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewWebhookSource creates a source queueing up to buffer updates.
func NewWebhookSource(buffer int, logger *zap.Logger) *WebhookSource {
	return &WebhookSource{out: make(chan bot.Update, buffer), logger: logger}
}

// Push translates u and queues it. Unsupported update types are accepted
// and dropped. It blocks while the queue is full, until ctx is done.
func (w *WebhookSource) Push(ctx context.Context, raw tgbotapi.Update) error {
	u, ok := Translate(raw)
	if !ok {
		return nil
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrSourceClosed
	}

	select {
	case w.out <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Updates is the stream the dispatcher reads.
func (w *WebhookSource) Updates() <-chan bot.Update {
	return w.out
}

// Close stops accepting updates and closes the stream so the dispatcher
// drains what is queued and exits.
func (w *WebhookSource) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.out)
	w.logger.Info("webhook source closed")
}

// RegisterWebhook points Telegram at baseURL/telegram/webhook/<secret>.
func RegisterWebhook(api *tgbotapi.BotAPI, baseURL, secret string) error {
	wh, err := tgbotapi.NewWebhook(baseURL + "/telegram/webhook/" + secret)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	wh.AllowedUpdates = AllowedUpdates

	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// DeleteWebhook removes any registered webhook. getUpdates is refused by
// Telegram while one is set.
func DeleteWebhook(api *tgbotapi.BotAPI) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}
