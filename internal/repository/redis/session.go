package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "autoapprove:session:"

// SessionStore keeps the awaiting-request flag in Redis so several bot
// replicas behind one webhook agree on it. A TTL bounds how long an armed
// flag survives without a follow-up message.
type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSessionStore returns a store whose flags expire after ttl.
func NewSessionStore(client *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func awaitingKey(userID int64) string {
	return fmt.Sprintf("%s%d:awaiting_request", keyPrefix, userID)
}

// SetAwaitingRequest arms or clears the flag for userID.
func (s *SessionStore) SetAwaitingRequest(ctx context.Context, userID int64, awaiting bool) error {
	key := awaitingKey(userID)
	if !awaiting {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("clear session flag: %w", err)
		}
		return nil
	}
	if err := s.client.Set(ctx, key, "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("set session flag: %w", err)
	}
	return nil
}

// AwaitingRequest reports whether the flag for userID is armed.
func (s *SessionStore) AwaitingRequest(ctx context.Context, userID int64) (bool, error) {
	_, err := s.client.Get(ctx, awaitingKey(userID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get session flag: %w", err)
	}
	return true, nil
}
