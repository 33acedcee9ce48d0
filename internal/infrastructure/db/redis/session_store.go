package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// SessionStore keeps admin sessions as expiring keys.
// Key format: admin:session:<session_id> -> admin email
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Create(ctx context.Context, sessionID, email string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(sessionID), email, ttl).Err(); err != nil {
		return fmt.Errorf("session create: %w", err)
	}
	return nil
}

func (s *SessionStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	email, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrSessionInvalid
	}
	if err != nil {
		return "", fmt.Errorf("session lookup: %w", err)
	}
	return email, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return "admin:session:" + sessionID
}
