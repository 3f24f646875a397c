package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lalith-99/autoapprove/internal/models"
	"github.com/lalith-99/autoapprove/internal/repository"
	"github.com/lalith-99/autoapprove/internal/repository/memory"
	"github.com/lalith-99/autoapprove/internal/state"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAdminID int64 = 999

var fixedNow = time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)

// fakeMessenger records every outbound call. Sends to chat ids in failFor
// return an error.
type fakeMessenger struct {
	mu         sync.Mutex
	sent       []Message
	approved   [][2]int64
	answered   []string
	failFor    map[int64]bool
	approveErr error
}

func (f *fakeMessenger) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[msg.ChatID] {
		return errors.New("bot was blocked by the user")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMessenger) ApproveJoinRequest(_ context.Context, chatID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.approveErr != nil {
		return f.approveErr
	}
	f.approved = append(f.approved, [2]int64{chatID, userID})
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, id)
	return nil
}

func (f *fakeMessenger) to(chatID int64) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Message
	for _, m := range f.sent {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

type publishedEvent struct {
	kind string
	data any
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(kind string, data any) {
	p.events = append(p.events, publishedEvent{kind, data})
}

// failingRepo fails every save.
type failingRepo struct{}

func (failingRepo) Name() string { return "failing" }
func (failingRepo) Load(context.Context) (*models.Snapshot, error) {
	return nil, repository.ErrNotFound
}
func (failingRepo) Save(context.Context, *models.Snapshot) error {
	return errors.New("read-only file system")
}

// nopRepo accepts and discards saves.
type nopRepo struct{}

func (nopRepo) Name() string { return "nop" }
func (nopRepo) Load(context.Context) (*models.Snapshot, error) {
	return nil, repository.ErrNotFound
}
func (nopRepo) Save(context.Context, *models.Snapshot) error { return nil }

type fixture struct {
	h        *Handler
	st       *state.State
	msg      *fakeMessenger
	sessions *memory.SessionStore
	feed     *recordingPublisher
}

func newFixture(t *testing.T, repo repository.SnapshotRepository) *fixture {
	t.Helper()
	if repo == nil {
		repo = nopRepo{}
	}

	st := state.New(repo, zap.NewNop())
	require.NoError(t, st.Load(context.Background()))

	f := &fixture{
		st:       st,
		msg:      &fakeMessenger{failFor: map[int64]bool{}},
		sessions: memory.NewSessionStore(),
		feed:     &recordingPublisher{},
	}
	f.h = NewHandler(st, f.sessions, f.msg, testAdminID, zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }),
		WithPublisher(f.feed),
	)
	return f
}

var alice = User{ID: 111, Username: "alice", FirstName: "Alice"}

var testChat = Chat{ID: -100, Title: "Test", Username: "testchan", Type: "channel"}
