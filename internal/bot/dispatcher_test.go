package bot

import (
	"context"
	"testing"

	"github.com/lalith-99/autoapprove/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcher_RoutesEveryEventKind(t *testing.T) {
	f := newFixture(t, nil)
	d := NewDispatcher(f.h, zap.NewNop())
	ctx := context.Background()

	d.Dispatch(ctx, Update{ID: "1", Event: CommandEvent{ChatID: 111, From: alice, Command: "start"}})
	d.Dispatch(ctx, Update{ID: "2", Event: JoinRequestEvent{Chat: testChat, From: alice}})
	d.Dispatch(ctx, Update{ID: "3", Event: ButtonClickEvent{CallbackID: "cb", ChatID: 111, From: alice, Data: ButtonRequest}})
	d.Dispatch(ctx, Update{ID: "4", Event: TextMessageEvent{ChatID: 111, From: alice, Text: "Season 3 please"}})

	st := f.st.Stats()
	assert.Equal(t, 1, st.Users)
	assert.Equal(t, 1, st.Approvals)
	assert.Equal(t, 1, st.ContentRequests)
	assert.Equal(t, []string{"cb"}, f.msg.answered)
}

func TestDispatcher_UnknownCommandIgnored(t *testing.T) {
	f := newFixture(t, nil)
	d := NewDispatcher(f.h, zap.NewNop())

	d.Dispatch(context.Background(), Update{ID: "1", Event: CommandEvent{ChatID: 111, From: alice, Command: "frobnicate"}})

	assert.Empty(t, f.msg.sent)
}

func TestDispatcher_HelpCommand(t *testing.T) {
	f := newFixture(t, nil)
	d := NewDispatcher(f.h, zap.NewNop())

	d.Dispatch(context.Background(), Update{ID: "1", Event: CommandEvent{ChatID: 111, From: alice, Command: "help"}})

	out := f.msg.to(111)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Text, "How to Use")
}

func TestDispatcher_LogsByKind(t *testing.T) {
	f := newFixture(t, nil)
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDispatcher(f.h, zap.New(core))

	d.Dispatch(context.Background(), Update{ID: "u-1", Event: CommandEvent{ChatID: 111, From: alice, Command: "stats"}})

	entries := logs.FilterMessage("unauthorized command").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "u-1", entries[0].ContextMap()["update_id"])
}

func TestDispatcher_DeliveryFailureLoggedAsWarning(t *testing.T) {
	f := newFixture(t, nil)
	f.msg.failFor[111] = true
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDispatcher(f.h, zap.New(core))

	d.Dispatch(context.Background(), Update{ID: "u-2", Event: JoinRequestEvent{Chat: testChat, From: alice}})

	entries := logs.FilterMessage("delivery failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "send welcome", entries[0].ContextMap()["op"])
}

// panicMessenger blows up on every send.
type panicMessenger struct{ fakeMessenger }

func (*panicMessenger) Send(context.Context, Message) error { panic("boom") }

func TestDispatcher_RecoversPanics(t *testing.T) {
	f := newFixture(t, nil)
	h := NewHandler(f.st, f.sessions, &panicMessenger{}, testAdminID, zap.NewNop())
	core, logs := observer.New(zapcore.DebugLevel)
	d := NewDispatcher(h, zap.New(core))

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), Update{ID: "p", Event: CommandEvent{ChatID: 111, From: alice, Command: "help"}})
	})

	assert.Equal(t, 1, logs.FilterMessage("handler panicked").Len())
	handlerErrs := logs.FilterMessage("handler failed").All()
	require.Len(t, handlerErrs, 1)
	assert.Equal(t, "handler", handlerErrs[0].ContextMap()["kind"])

	// The dispatcher keeps working afterwards.
	d.Dispatch(context.Background(), Update{ID: "q", Event: TextMessageEvent{ChatID: 111, From: alice, Text: "hi"}})
}

func TestDispatcher_RunRequiresLoad(t *testing.T) {
	st := state.New(nopRepo{}, zap.NewNop())
	h := NewHandler(st, nil, &fakeMessenger{}, testAdminID, zap.NewNop())
	d := NewDispatcher(h, zap.NewNop())

	err := d.Run(context.Background(), make(chan Update))
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestDispatcher_RunDrainsUntilClosed(t *testing.T) {
	f := newFixture(t, nil)
	d := NewDispatcher(f.h, zap.NewNop())

	updates := make(chan Update, 3)
	for i := int64(1); i <= 3; i++ {
		updates <- Update{Event: CommandEvent{ChatID: i, From: User{ID: i}, Command: "start"}}
	}
	close(updates)

	// A cancelled context does not drop queued updates.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, d.Run(ctx, updates))
	_, total := f.st.Users(0)
	assert.Equal(t, 3, total)
}
