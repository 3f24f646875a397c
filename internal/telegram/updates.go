package telegram

import (
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/lalith-99/autoapprove/internal/bot"
)

// AllowedUpdates are the update types requested from Telegram. Join
// requests only arrive when chat_join_request is listed explicitly.
var AllowedUpdates = []string{"message", "callback_query", "chat_join_request"}

// Translate maps a Bot API update to a bot event. ok is false for update
// types the bot does not handle, such as edits or channel posts.
func Translate(u tgbotapi.Update) (bot.Update, bool) {
	ev, ok := translateEvent(u)
	if !ok {
		return bot.Update{}, false
	}
	return bot.Update{ID: uuid.NewString(), Event: ev}, true
}

func translateEvent(u tgbotapi.Update) (bot.Event, bool) {
	switch {
	case u.ChatJoinRequest != nil:
		req := u.ChatJoinRequest
		return bot.JoinRequestEvent{
			Chat: bot.Chat{
				ID:       req.Chat.ID,
				Title:    req.Chat.Title,
				Username: req.Chat.UserName,
				Type:     req.Chat.Type,
			},
			From: user(&req.From),
			Date: time.Unix(int64(req.Date), 0).UTC(),
		}, true

	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.From == nil {
			return nil, false
		}
		// Buttons live on the bot's own messages; fall back to the sender's
		// private chat for inline-mode messages that have none.
		chatID := q.From.ID
		if q.Message != nil && q.Message.Chat != nil {
			chatID = q.Message.Chat.ID
		}
		return bot.ButtonClickEvent{
			CallbackID: q.ID,
			ChatID:     chatID,
			From:       user(q.From),
			Data:       q.Data,
		}, true

	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.Chat == nil {
			return nil, false
		}
		if m.IsCommand() {
			return bot.CommandEvent{
				ChatID:  m.Chat.ID,
				From:    user(m.From),
				Command: strings.ToLower(m.Command()),
				Args:    strings.Fields(m.CommandArguments()),
			}, true
		}
		if m.Text == "" {
			return nil, false
		}
		return bot.TextMessageEvent{
			ChatID: m.Chat.ID,
			From:   user(m.From),
			Text:   m.Text,
		}, true
	}

	return nil, false
}

func user(u *tgbotapi.User) bot.User {
	return bot.User{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
	}
}
