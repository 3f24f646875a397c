package bot

import (
	"context"
	"errors"

	"github.com/lalith-99/autoapprove/internal/apperr"
	"github.com/lalith-99/autoapprove/internal/models"
	"go.uber.org/zap"
)

// HandleJoinRequest approves every join request it sees.
//
// Steps run in order and none depends on an earlier one succeeding:
//  1. count the request against the channel (creating it on first sight)
//  2. append an approved JoinRecord and persist
//  3. approve on the platform
//  4. DM the user a welcome with a link back to the channel
//  5. notify the admin with the channel's running total
//
// A failed approval does not roll back 1-2, so the counters can report an
// approval the platform never applied. Every failure is collected into the
// returned error.
func (h *Handler) HandleJoinRequest(ctx context.Context, ev JoinRequestEvent) error {
	var errs []error
	now := h.now()

	approvals, err := h.st.RecordJoin(ctx,
		models.ChannelInfo{
			Title:    ev.Chat.Title,
			Username: ev.Chat.Username,
			ID:       ev.Chat.ID,
			Type:     ev.Chat.Type,
		},
		models.JoinRecord{
			UserID:    ev.From.ID,
			Username:  ev.From.Username,
			FirstName: ev.From.FirstName,
			Timestamp: models.NewTimestamp(now),
		},
	)
	if err != nil {
		errs = append(errs, err)
	}

	if err := h.messenger.ApproveJoinRequest(ctx, ev.Chat.ID, ev.From.ID); err != nil {
		errs = append(errs, apperr.New(apperr.KindDelivery, "approve join request", err))
	} else {
		h.logger.Info("join request approved",
			zap.Int64("user_id", ev.From.ID),
			zap.String("username", ev.From.Username),
			zap.Int64("chat_id", ev.Chat.ID),
			zap.String("channel", ev.Chat.Title),
		)
	}

	welcome := Message{
		ChatID: ev.From.ID,
		Text:   welcomeApprovedText(ev.Chat.Title, ev.From.FirstName),
		Buttons: [][]Button{
			{{Text: "📢 Open Channel", URL: channelLink(ev.Chat.Username, ev.Chat.ID)}},
		},
	}
	if err := h.send(ctx, "send welcome", welcome); err != nil {
		errs = append(errs, err)
	}

	if err := h.notifyAdmin(ctx, "notify admin of approval", adminJoinNotificationText(ev.From, ev.Chat.Title, now, approvals)); err != nil {
		errs = append(errs, err)
	}

	h.feed.Publish(FeedJoinApproved, map[string]any{
		"user_id":    ev.From.ID,
		"username":   ev.From.Username,
		"first_name": ev.From.FirstName,
		"channel_id": ev.Chat.ID,
		"channel":    ev.Chat.Title,
		"approvals":  approvals,
		"timestamp":  now,
	})

	return errors.Join(errs...)
}
