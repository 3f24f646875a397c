package bot

import (
	"context"
	"errors"

	"github.com/lalith-99/autoapprove/internal/apperr"
	"go.uber.org/zap"
)

// HandleStart registers the caller as a known user and shows the menu.
func (h *Handler) HandleStart(ctx context.Context, ev CommandEvent) error {
	var errs []error

	if _, err := h.st.AddUser(ctx, ev.From.ID); err != nil {
		errs = append(errs, err)
	}

	hasChannels := len(h.st.Channels()) > 0
	msg := Message{
		ChatID:  ev.ChatID,
		Text:    startText(ev.From.Username),
		Buttons: startMenu(hasChannels),
	}
	if err := h.send(ctx, "reply /start", msg); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// HandleHelp answers both /help and the help button.
func (h *Handler) HandleHelp(ctx context.Context, chatID int64) error {
	return h.reply(ctx, "reply help", chatID, helpText)
}

// HandleShowChannels lists known channels to any user, with a link button
// for every public one.
func (h *Handler) HandleShowChannels(ctx context.Context, chatID int64) error {
	channels := h.st.Channels()
	if len(channels) == 0 {
		return h.reply(ctx, "reply channel list", chatID, noChannelsUserText)
	}

	text, buttons := channelListText(channels)
	return h.send(ctx, "reply channel list", Message{ChatID: chatID, Text: text, Buttons: buttons})
}

// HandleButton acknowledges the click and routes on its payload. Unknown
// payloads are acknowledged and otherwise ignored.
func (h *Handler) HandleButton(ctx context.Context, ev ButtonClickEvent) error {
	var errs []error

	if ev.CallbackID != "" {
		if err := h.messenger.AnswerCallback(ctx, ev.CallbackID); err != nil {
			errs = append(errs, apperr.New(apperr.KindDelivery, "answer callback", err))
		}
	}

	switch ev.Data {
	case ButtonRequest:
		if err := h.reply(ctx, "reply request prompt", ev.ChatID, requestPromptText); err != nil {
			errs = append(errs, err)
		}
		if err := h.sessions.SetAwaitingRequest(ctx, ev.From.ID, true); err != nil {
			errs = append(errs, apperr.New(apperr.KindPersistence, "arm request flag", err))
		}
	case ButtonHelp:
		if err := h.HandleHelp(ctx, ev.ChatID); err != nil {
			errs = append(errs, err)
		}
	case ButtonChannels:
		if err := h.HandleShowChannels(ctx, ev.ChatID); err != nil {
			errs = append(errs, err)
		}
	default:
		h.logger.Debug("ignoring unknown button payload", zap.String("data", ev.Data))
	}

	return errors.Join(errs...)
}

// HandleText consumes a plain text message as a content request, but only
// when the sender armed the flag by clicking "request". Otherwise it does
// nothing at all.
func (h *Handler) HandleText(ctx context.Context, ev TextMessageEvent) error {
	awaiting, err := h.sessions.AwaitingRequest(ctx, ev.From.ID)
	if err != nil {
		return apperr.New(apperr.KindPersistence, "read request flag", err)
	}
	if !awaiting {
		return nil
	}

	var errs []error
	now := h.now()

	req, err := h.st.AddContentRequest(ctx,
		ev.From.ID,
		orDefault(ev.From.Username, anonymousUsername),
		orDefault(ev.From.FirstName, defaultFirstName),
		ev.Text,
		now,
	)
	if err != nil {
		errs = append(errs, err)
	}

	if err := h.reply(ctx, "acknowledge content request", ev.ChatID, requestSubmittedText(req)); err != nil {
		errs = append(errs, err)
	}
	if err := h.notifyAdmin(ctx, "notify admin of content request", adminRequestNotificationText(req, now)); err != nil {
		errs = append(errs, err)
	}

	if err := h.sessions.SetAwaitingRequest(ctx, ev.From.ID, false); err != nil {
		errs = append(errs, apperr.New(apperr.KindPersistence, "clear request flag", err))
	}

	h.logger.Info("content request received",
		zap.Int("request_id", req.ID),
		zap.Int64("user_id", req.UserID),
	)
	h.feed.Publish(FeedContentRequested, req)

	return errors.Join(errs...)
}
