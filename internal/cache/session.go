package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/heartlink/heartlink/internal/errors"
)

// SessionStore resolves bearer tokens to user ids. Token issuance is
// owned by the auth service; this side only reads and revokes.
type SessionStore struct {
	redis *RedisService
}

// NewSessionStore creates a session store over a redis service.
func NewSessionStore(redis *RedisService) *SessionStore {
	return &SessionStore{redis: redis}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Resolve returns the user id a token belongs to.
func (s *SessionStore) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := s.redis.Get(ctx, sessionKey(token))
	if err == ErrCacheMiss {
		return "", errors.NewAuthenticationError("Invalid or expired session token")
	}
	if err != nil {
		return "", errors.NewCacheError("resolve session", err)
	}
	return userID, nil
}

// Store associates a token with a user id for ttl. A zero ttl uses
// SessionTTL.
func (s *SessionStore) Store(ctx context.Context, token, userID string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = time.Duration(SessionTTL) * time.Second
	}
	if err := s.redis.Set(ctx, sessionKey(token), userID, ttl); err != nil {
		return errors.NewCacheError("store session", err)
	}
	return nil
}

// Revoke invalidates a token.
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.redis.Delete(ctx, sessionKey(token)); err != nil {
		return errors.NewCacheError(fmt.Sprintf("revoke session %s", token), err)
	}
	return nil
}
