package memory

import (
	"context"
	"sync"
)

// SessionStore keeps per-user flags in process memory. Flags are lost on
// restart, which silently drops any request flow that was in progress.
type SessionStore struct {
	mu       sync.Mutex
	awaiting map[int64]bool
}

// NewSessionStore returns an empty in-process store.
func NewSessionStore() *SessionStore {
	return &SessionStore{awaiting: make(map[int64]bool)}
}

// SetAwaitingRequest arms or clears the flag for userID.
func (s *SessionStore) SetAwaitingRequest(_ context.Context, userID int64, awaiting bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if awaiting {
		s.awaiting[userID] = true
	} else {
		delete(s.awaiting, userID)
	}
	return nil
}

// AwaitingRequest reports whether the flag for userID is armed.
func (s *SessionStore) AwaitingRequest(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting[userID], nil
}
