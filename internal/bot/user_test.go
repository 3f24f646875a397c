package bot

import (
	"context"
	"testing"

	"github.com/lalith-99/autoapprove/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleStart(t *testing.T) {
	t.Run("registers user and shows menu without channels", func(t *testing.T) {
		f := newFixture(t, nil)

		require.NoError(t, f.h.HandleStart(context.Background(), CommandEvent{ChatID: 111, From: alice, Command: "start"}))

		ids, total := f.st.Users(0)
		assert.Equal(t, []int64{111}, ids)
		assert.Equal(t, 1, total)

		out := f.msg.to(111)
		require.Len(t, out, 1)
		assert.Contains(t, out[0].Text, "Hi @alice!")
		require.Len(t, out[0].Buttons, 2)
		assert.Equal(t, ButtonRequest, out[0].Buttons[0][0].Data)
		assert.Equal(t, ButtonHelp, out[0].Buttons[1][0].Data)
	})

	t.Run("channels row appears once a channel is known", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()
		require.NoError(t, f.h.HandleJoinRequest(ctx, JoinRequestEvent{Chat: testChat, From: User{ID: 5}}))

		require.NoError(t, f.h.HandleStart(ctx, CommandEvent{ChatID: 111, From: User{ID: 111}, Command: "start"}))

		out := f.msg.to(111)
		require.Len(t, out, 1)
		assert.Contains(t, out[0].Text, "Hi @No username!")
		require.Len(t, out[0].Buttons, 3)
		assert.Equal(t, ButtonChannels, out[0].Buttons[1][0].Data)
	})

	t.Run("repeat start does not duplicate the user", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()
		ev := CommandEvent{ChatID: 111, From: alice, Command: "start"}

		require.NoError(t, f.h.HandleStart(ctx, ev))
		require.NoError(t, f.h.HandleStart(ctx, ev))

		_, total := f.st.Users(0)
		assert.Equal(t, 1, total)
	})
}

func TestContentRequestFlow(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.h.HandleButton(ctx, ButtonClickEvent{CallbackID: "cb1", ChatID: 111, From: alice, Data: ButtonRequest}))
	assert.Equal(t, []string{"cb1"}, f.msg.answered)

	awaiting, err := f.sessions.AwaitingRequest(ctx, 111)
	require.NoError(t, err)
	assert.True(t, awaiting)

	prompt := f.msg.to(111)
	require.Len(t, prompt, 1)
	assert.Contains(t, prompt[0].Text, "Send Your Content Request")

	require.NoError(t, f.h.HandleText(ctx, TextMessageEvent{ChatID: 111, From: alice, Text: "Season 3 please"}))

	reqs := f.st.RecentRequests(10)
	require.Len(t, reqs, 1)
	assert.Equal(t, models.ContentRequest{
		ID:        1,
		UserID:    111,
		Username:  "alice",
		FirstName: "Alice",
		Request:   "Season 3 please",
		Timestamp: models.NewTimestamp(fixedNow),
	}, reqs[0])

	ack := f.msg.to(111)
	require.Len(t, ack, 2)
	assert.Contains(t, ack[1].Text, "Request ID: #1")
	assert.Contains(t, ack[1].Text, "Season 3 please")

	admin := f.msg.to(testAdminID)
	require.Len(t, admin, 1)
	assert.Contains(t, admin[0].Text, "ID: #1")
	assert.Contains(t, admin[0].Text, "Alice (@alice)")
	assert.Contains(t, admin[0].Text, "Request: Season 3 please")

	awaiting, _ = f.sessions.AwaitingRequest(ctx, 111)
	assert.False(t, awaiting)

	require.Len(t, f.feed.events, 1)
	assert.Equal(t, FeedContentRequested, f.feed.events[0].kind)

	// A second message is ordinary chat again.
	require.NoError(t, f.h.HandleText(ctx, TextMessageEvent{ChatID: 111, From: alice, Text: "thanks"}))
	assert.Len(t, f.st.RecentRequests(10), 1)
}

func TestHandleText_WithoutFlagIsIgnored(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.h.HandleText(context.Background(), TextMessageEvent{ChatID: 111, From: alice, Text: "hello"}))

	assert.Empty(t, f.msg.sent)
	assert.Empty(t, f.st.RecentRequests(10))
}

func TestHandleText_Placeholders(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	anon := User{ID: 333}

	require.NoError(t, f.sessions.SetAwaitingRequest(ctx, anon.ID, true))
	require.NoError(t, f.h.HandleText(ctx, TextMessageEvent{ChatID: 333, From: anon, Text: "anything"}))

	req := f.st.RecentRequests(1)[0]
	assert.Equal(t, "Anonymous", req.Username)
	assert.Equal(t, "User", req.FirstName)
}

func TestHandleText_FlagSurvivesOtherButtons(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.h.HandleButton(ctx, ButtonClickEvent{ChatID: 111, From: alice, Data: ButtonRequest}))
	require.NoError(t, f.h.HandleButton(ctx, ButtonClickEvent{ChatID: 111, From: alice, Data: ButtonHelp}))

	awaiting, _ := f.sessions.AwaitingRequest(ctx, 111)
	assert.True(t, awaiting)
}

func TestHandleButton_Channels(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f := newFixture(t, nil)

		require.NoError(t, f.h.HandleButton(context.Background(), ButtonClickEvent{ChatID: 111, From: alice, Data: ButtonChannels}))

		out := f.msg.to(111)
		require.Len(t, out, 1)
		assert.Contains(t, out[0].Text, "No channels connected yet")
	})

	t.Run("public channels get a link button", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()
		require.NoError(t, f.h.HandleJoinRequest(ctx, JoinRequestEvent{Chat: testChat, From: User{ID: 5}}))
		require.NoError(t, f.h.HandleJoinRequest(ctx, JoinRequestEvent{Chat: Chat{ID: -200, Title: "Hidden"}, From: User{ID: 6}}))

		require.NoError(t, f.h.HandleButton(ctx, ButtonClickEvent{ChatID: 111, From: alice, Data: ButtonChannels}))

		out := f.msg.to(111)
		require.Len(t, out, 1)
		assert.Contains(t, out[0].Text, "OUR CHANNELS (2)")
		assert.Contains(t, out[0].Text, "Hidden")
		require.Len(t, out[0].Buttons, 1)
		assert.Equal(t, "https://t.me/testchan", out[0].Buttons[0][0].URL)
	})
}

func TestHandleButton_Unknown(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.h.HandleButton(context.Background(), ButtonClickEvent{CallbackID: "x", ChatID: 111, From: alice, Data: "bogus"}))

	assert.Equal(t, []string{"x"}, f.msg.answered)
	assert.Empty(t, f.msg.sent)
}
