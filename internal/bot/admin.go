package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/lalith-99/autoapprove/internal/apperr"
	"go.uber.org/zap"
)

// ErrNotAdmin is wrapped in the authorization error returned when a
// non-admin calls an admin command.
var ErrNotAdmin = errors.New("caller is not the admin")

// guard lets the admin through. Anyone else gets the fixed refusal and an
// authorization error; the caller must stop there.
func (h *Handler) guard(ctx context.Context, ev CommandEvent) error {
	if ev.From.ID == h.adminID {
		return nil
	}

	refusal := apperr.New(apperr.KindAuthorization, "/"+ev.Command, ErrNotAdmin)
	if err := h.reply(ctx, "reply admin refusal", ev.ChatID, adminOnlyText); err != nil {
		return errors.Join(refusal, err)
	}
	return refusal
}

// BroadcastResult counts a broadcast's per-user outcomes.
type BroadcastResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// Broadcast DMs text to every known user. A failed send is counted and the
// loop moves on.
func (h *Handler) Broadcast(ctx context.Context, text string) BroadcastResult {
	ids, total := h.st.Users(0)
	res := BroadcastResult{Total: total}

	for _, id := range ids {
		if err := h.messenger.Send(ctx, Message{ChatID: id, Text: text}); err != nil {
			res.Failed++
			h.logger.Debug("broadcast delivery failed", zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		res.Sent++
	}
	return res
}

// HandleBroadcast sends the command arguments to every known user and
// reports the counts to the admin.
func (h *Handler) HandleBroadcast(ctx context.Context, ev CommandEvent) error {
	if err := h.guard(ctx, ev); err != nil {
		return err
	}

	message := strings.TrimSpace(strings.Join(ev.Args, " "))
	if message == "" {
		return h.reply(ctx, "reply broadcast usage", ev.ChatID, broadcastUsageText)
	}

	var errs []error
	if err := h.reply(ctx, "reply broadcast started", ev.ChatID, broadcastStartedText); err != nil {
		errs = append(errs, err)
	}

	res := h.Broadcast(ctx, message)
	h.logger.Info("broadcast complete",
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Int("total", res.Total),
	)
	h.feed.Publish(FeedBroadcastDone, res)

	if err := h.reply(ctx, "reply broadcast summary", ev.ChatID, broadcastSummaryText(res)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// HandleStats sends the aggregate counters to the admin.
func (h *Handler) HandleStats(ctx context.Context, ev CommandEvent) error {
	if err := h.guard(ctx, ev); err != nil {
		return err
	}
	return h.reply(ctx, "reply /stats", ev.ChatID, statsText(h.st.Stats(), h.now()))
}

// HandleApprovals sends the most recent approvals, newest first.
func (h *Handler) HandleApprovals(ctx context.Context, ev CommandEvent) error {
	if err := h.guard(ctx, ev); err != nil {
		return err
	}

	recs := h.st.RecentJoins(recentLimit)
	if len(recs) == 0 {
		return h.reply(ctx, "reply /approvals", ev.ChatID, noApprovalsText)
	}
	return h.reply(ctx, "reply /approvals", ev.ChatID, recentApprovalsText(recs))
}

// HandleRequests sends the most recent content requests, newest first.
func (h *Handler) HandleRequests(ctx context.Context, ev CommandEvent) error {
	if err := h.guard(ctx, ev); err != nil {
		return err
	}

	reqs := h.st.RecentRequests(recentLimit)
	if len(reqs) == 0 {
		return h.reply(ctx, "reply /requests", ev.ChatID, noRequestsText)
	}
	return h.reply(ctx, "reply /requests", ev.ChatID, recentRequestsText(reqs))
}

// HandleAdminChannels sends the known channels with their counters.
func (h *Handler) HandleAdminChannels(ctx context.Context, ev CommandEvent) error {
	if err := h.guard(ctx, ev); err != nil {
		return err
	}

	channels := h.st.Channels()
	if len(channels) == 0 {
		return h.reply(ctx, "reply /channels", ev.ChatID, noChannelsAdminText)
	}
	return h.reply(ctx, "reply /channels", ev.ChatID, adminChannelsText(channels))
}

// HandleUsers sends the user count and the first ids.
func (h *Handler) HandleUsers(ctx context.Context, ev CommandEvent) error {
	if err := h.guard(ctx, ev); err != nil {
		return err
	}

	ids, total := h.st.Users(usersLimit)
	return h.reply(ctx, "reply /users", ev.ChatID, usersText(ids, total))
}

// HandleAdminPanel sends the admin command list with live counters.
func (h *Handler) HandleAdminPanel(ctx context.Context, ev CommandEvent) error {
	if err := h.guard(ctx, ev); err != nil {
		return err
	}
	return h.reply(ctx, "reply /admin", ev.ChatID, adminPanelText(h.st.Stats()))
}
