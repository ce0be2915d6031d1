package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resetKeyPrefix  = "pwreset:"
	defaultResetTTL = 15 * time.Minute
)

// ResetStore manages single-use password-reset tokens in Redis.
type ResetStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResetStore returns a new reset-token store.
func NewResetStore(rdb *redis.Client, ttl time.Duration) *ResetStore {
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	return &ResetStore{rdb: rdb, ttl: ttl}
}

// Issue creates a token bound to username. The token expires after the
// store's TTL.
func (s *ResetStore) Issue(ctx context.Context, username string) (string, error) {
	token, err := newResetToken()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, resetKeyPrefix+token, username, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume atomically removes the token and returns the username it was
// issued for. ok is false if the token is unknown or already used.
func (s *ResetStore) Consume(ctx context.Context, token string) (string, bool, error) {
	username, err := s.rdb.GetDel(ctx, resetKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return username, true, nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
