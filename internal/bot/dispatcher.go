package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/lalith-99/autoapprove/internal/apperr"
	"go.uber.org/zap"
)

// ErrNotLoaded is returned by Run when the state was never loaded.
var ErrNotLoaded = errors.New("dispatcher: state not loaded")

type commandFunc func(ctx context.Context, ev CommandEvent) error

// Dispatcher routes updates to the handler, one at a time.
type Dispatcher struct {
	h        *Handler
	logger   *zap.Logger
	commands map[string]commandFunc
}

// NewDispatcher registers every command handled by h.
func NewDispatcher(h *Handler, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{h: h, logger: logger}
	d.commands = map[string]commandFunc{
		"start": h.HandleStart,
		"help": func(ctx context.Context, ev CommandEvent) error {
			return h.HandleHelp(ctx, ev.ChatID)
		},
		"broadcast": h.HandleBroadcast,
		"stats":     h.HandleStats,
		"approvals": h.HandleApprovals,
		"requests":  h.HandleRequests,
		"channels":  h.HandleAdminChannels,
		"users":     h.HandleUsers,
		"admin":     h.HandleAdminPanel,
	}
	return d
}

// Run drains updates until the channel is closed. Each update is handled to
// completion before the next is read, so handlers never run concurrently.
// A cancelled ctx does not abort the update in flight; the source is
// expected to close the channel on shutdown.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan Update) error {
	if !d.h.st.Loaded() {
		return ErrNotLoaded
	}

	handleCtx := context.WithoutCancel(ctx)
	for u := range updates {
		d.Dispatch(handleCtx, u)
	}
	d.logger.Info("update stream closed, dispatcher stopped")
	return nil
}

// Dispatch handles a single update and logs whatever went wrong. It never
// panics and never returns an error; one bad update must not stop the bot.
func (d *Dispatcher) Dispatch(ctx context.Context, u Update) {
	d.report(u, d.route(ctx, u))
}

func (d *Dispatcher) route(ctx context.Context, u Update) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked",
				zap.String("update_id", u.ID),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			err = apperr.New(apperr.KindHandler, "dispatch", fmt.Errorf("panic: %v", r))
		}
	}()

	switch ev := u.Event.(type) {
	case JoinRequestEvent:
		return d.h.HandleJoinRequest(ctx, ev)
	case CommandEvent:
		cmd, ok := d.commands[ev.Command]
		if !ok {
			d.logger.Debug("ignoring unknown command",
				zap.String("update_id", u.ID),
				zap.String("command", ev.Command),
			)
			return nil
		}
		return cmd(ctx, ev)
	case ButtonClickEvent:
		return d.h.HandleButton(ctx, ev)
	case TextMessageEvent:
		return d.h.HandleText(ctx, ev)
	default:
		d.logger.Debug("ignoring unsupported event", zap.String("update_id", u.ID))
		return nil
	}
}

// report logs each failure at a level chosen by its kind.
func (d *Dispatcher) report(u Update, err error) {
	for _, leaf := range apperr.Flatten(err) {
		fields := []zap.Field{
			zap.String("update_id", u.ID),
			zap.Error(leaf),
		}
		if e, ok := leaf.(*apperr.Error); ok {
			fields = append(fields, zap.String("op", e.Op))
		}

		switch kind := apperr.KindOf(leaf); kind {
		case apperr.KindAuthorization:
			d.logger.Debug("unauthorized command", fields...)
		case apperr.KindDelivery:
			d.logger.Warn("delivery failed", fields...)
		case apperr.KindPersistence:
			d.logger.Error("persistence failed", fields...)
		default:
			d.logger.Error("handler failed", append(fields, zap.Stringer("kind", kind))...)
		}
	}
}
