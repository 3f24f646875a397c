package telegram

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lalith-99/autoapprove/internal/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tgAlice = &tgbotapi.User{ID: 111, UserName: "alice", FirstName: "Alice"}

func commandMessage(text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:     tgAlice,
		Chat:     &tgbotapi.Chat{ID: 111, Type: "private"},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		update tgbotapi.Update
		want   bot.Event
	}{
		{
			name: "join request",
			update: tgbotapi.Update{ChatJoinRequest: &tgbotapi.ChatJoinRequest{
				Chat: tgbotapi.Chat{ID: -100, Type: "channel", Title: "Test", UserName: "testchan"},
				From: *tgAlice,
				Date: 1700000000,
			}},
			want: bot.JoinRequestEvent{
				Chat: bot.Chat{ID: -100, Title: "Test", Username: "testchan", Type: "channel"},
				From: bot.User{ID: 111, Username: "alice", FirstName: "Alice"},
				Date: time.Unix(1700000000, 0).UTC(),
			},
		},
		{
			name:   "command with arguments",
			update: tgbotapi.Update{Message: commandMessage("/broadcast  New   episode", 10)},
			want: bot.CommandEvent{
				ChatID:  111,
				From:    bot.User{ID: 111, Username: "alice", FirstName: "Alice"},
				Command: "broadcast",
				Args:    []string{"New", "episode"},
			},
		},
		{
			name:   "command addressed to the bot",
			update: tgbotapi.Update{Message: commandMessage("/start@AutoApproveBot", 21)},
			want: bot.CommandEvent{
				ChatID:  111,
				From:    bot.User{ID: 111, Username: "alice", FirstName: "Alice"},
				Command: "start",
				Args:    []string{},
			},
		},
		{
			name: "button click",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID:      "cb-1",
				From:    tgAlice,
				Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 111}},
				Data:    "request",
			}},
			want: bot.ButtonClickEvent{
				CallbackID: "cb-1",
				ChatID:     111,
				From:       bot.User{ID: 111, Username: "alice", FirstName: "Alice"},
				Data:       "request",
			},
		},
		{
			name: "plain text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				From: tgAlice,
				Chat: &tgbotapi.Chat{ID: 111},
				Text: "Season 3 please",
			}},
			want: bot.TextMessageEvent{
				ChatID: 111,
				From:   bot.User{ID: 111, Username: "alice", FirstName: "Alice"},
				Text:   "Season 3 please",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.update)
			require.True(t, ok)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, tt.want, got.Event)
		})
	}
}

func TestTranslate_Unsupported(t *testing.T) {
	tests := map[string]tgbotapi.Update{
		"empty":          {},
		"edited message": {EditedMessage: &tgbotapi.Message{Text: "x"}},
		"photo only":     {Message: &tgbotapi.Message{From: tgAlice, Chat: &tgbotapi.Chat{ID: 1}}},
		"no sender":      {Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"}},
	}

	for name, u := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := Translate(u)
			assert.False(t, ok)
		})
	}
}

func TestTranslate_UniqueIDs(t *testing.T) {
	u := tgbotapi.Update{Message: &tgbotapi.Message{From: tgAlice, Chat: &tgbotapi.Chat{ID: 1}, Text: "hi"}}

	a, _ := Translate(u)
	b, _ := Translate(u)
	assert.NotEqual(t, a.ID, b.ID)
}
