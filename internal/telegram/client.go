// Package telegram is the Telegram side of the bot: it turns Bot API updates
// into bot events and implements bot.Messenger on top of the Bot API.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lalith-99/autoapprove/internal/bot"
	"go.uber.org/zap"
)

// API is the subset of *tgbotapi.BotAPI the client calls.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client implements bot.Messenger.
//
// The Bot API library has no context support, so ctx is only checked before
// each call.
type Client struct {
	api    API
	logger *zap.Logger
}

var _ bot.Messenger = (*Client)(nil)

// NewClient wraps api.
func NewClient(api API, logger *zap.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// Send delivers msg with its buttons as an inline keyboard.
func (c *Client) Send(ctx context.Context, msg bot.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if markup, ok := keyboard(msg.Buttons); ok {
		cfg.ReplyMarkup = markup
	}

	if _, err := c.api.Send(cfg); err != nil {
		return fmt.Errorf("send message to %d: %w", msg.ChatID, err)
	}
	return nil
}

// ApproveJoinRequest calls approveChatJoinRequest.
func (c *Client) ApproveJoinRequest(ctx context.Context, chatID, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := tgbotapi.ApproveChatJoinRequestConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
		UserID:     userID,
	}
	if _, err := c.api.Request(cfg); err != nil {
		return fmt.Errorf("approve %d in %d: %w", userID, chatID, err)
	}
	return nil
}

// AnswerCallback answers the callback query with no text.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// answerCallbackQuery returns a bool, not a Message, so it has to go
	// through Request rather than Send.
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("answer callback %s: %w", callbackID, err)
	}
	return nil
}

// keyboard converts button rows to an inline keyboard. Buttons with a URL
// open a link, all others carry their Data back as a callback.
func keyboard(rows [][]bot.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}

	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...), true
}
