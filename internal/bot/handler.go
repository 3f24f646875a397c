package bot

import (
	"context"
	"time"

	"github.com/lalith-99/autoapprove/internal/apperr"
	"github.com/lalith-99/autoapprove/internal/repository"
	"github.com/lalith-99/autoapprove/internal/state"
	"go.uber.org/zap"
)

// Handler holds everything the event handlers touch. All shared state goes
// through st and sessions; nothing is package-global.
type Handler struct {
	st        *state.State
	sessions  repository.SessionRepository
	messenger Messenger
	feed      Publisher
	adminID   int64
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithPublisher attaches the live admin feed.
func WithPublisher(p Publisher) Option {
	return func(h *Handler) {
		if p != nil {
			h.feed = p
		}
	}
}

// NewHandler wires a Handler. Replies go through messenger; adminID gates
// the admin commands.
func NewHandler(
	st *state.State,
	sessions repository.SessionRepository,
	messenger Messenger,
	adminID int64,
	logger *zap.Logger,
	opts ...Option,
) *Handler {
	h := &Handler{
		st:        st,
		sessions:  sessions,
		messenger: messenger,
		feed:      nopPublisher{},
		adminID:   adminID,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// send delivers msg and tags any failure as a delivery error for op.
func (h *Handler) send(ctx context.Context, op string, msg Message) error {
	if err := h.messenger.Send(ctx, msg); err != nil {
		return apperr.New(apperr.KindDelivery, op, err)
	}
	return nil
}

func (h *Handler) reply(ctx context.Context, op string, chatID int64, text string) error {
	return h.send(ctx, op, Message{ChatID: chatID, Text: text})
}

// notifyAdmin sends text to the fixed administrator id.
func (h *Handler) notifyAdmin(ctx context.Context, op, text string) error {
	return h.reply(ctx, op, h.adminID, text)
}
