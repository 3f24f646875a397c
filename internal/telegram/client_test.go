package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lalith-99/autoapprove/internal/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	err       error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: f.err == nil}, f.err
}

func TestClient_SendWithButtons(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api, zap.NewNop())

	err := c.Send(context.Background(), bot.Message{
		ChatID: 111,
		Text:   "hello",
		Buttons: [][]bot.Button{
			{{Text: "Request", Data: "request"}},
			{{Text: "Open", URL: "https://t.me/testchan"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, api.sent, 1)

	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(111), msg.ChatID)
	assert.Equal(t, "hello", msg.Text)

	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "request", *markup.InlineKeyboard[0][0].CallbackData)
	require.NotNil(t, markup.InlineKeyboard[1][0].URL)
	assert.Equal(t, "https://t.me/testchan", *markup.InlineKeyboard[1][0].URL)
}

func TestClient_SendPlain(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api, zap.NewNop())

	require.NoError(t, c.Send(context.Background(), bot.Message{ChatID: 1, Text: "x"}))

	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Nil(t, msg.ReplyMarkup)
}

func TestClient_SendError(t *testing.T) {
	api := &fakeAPI{err: errors.New("Forbidden: bot was blocked by the user")}
	c := NewClient(api, zap.NewNop())

	err := c.Send(context.Background(), bot.Message{ChatID: 1, Text: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, api.err)
}

func TestClient_ApproveJoinRequest(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api, zap.NewNop())

	require.NoError(t, c.ApproveJoinRequest(context.Background(), -100, 111))

	require.Len(t, api.requested, 1)
	cfg, ok := api.requested[0].(tgbotapi.ApproveChatJoinRequestConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100), cfg.ChatID)
	assert.Equal(t, int64(111), cfg.UserID)
}

func TestClient_AnswerCallback(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api, zap.NewNop())

	require.NoError(t, c.AnswerCallback(context.Background(), "cb-1"))

	cfg, ok := api.requested[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-1", cfg.CallbackQueryID)
}

func TestClient_CancelledContext(t *testing.T) {
	api := &fakeAPI{}
	c := NewClient(api, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Send(ctx, bot.Message{ChatID: 1}), context.Canceled)
	assert.Empty(t, api.sent)
}
