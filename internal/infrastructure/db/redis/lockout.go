package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockoutStore counts consecutive interactive sign-in failures per username.
// Key format: lockout:<username>. The counter expires after the window, so a
// lockout clears itself without any unlock bookkeeping.
type LockoutStore struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

// NewLockoutStore creates a LockoutStore. maxFailures is the number of
// failures inside the window that locks the account.
func NewLockoutStore(client *redis.Client, maxFailures int, window time.Duration) *LockoutStore {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LockoutStore{client: client, maxFailures: int64(maxFailures), window: window}
}

func (s *LockoutStore) IsLockedOut(ctx context.Context, username string) (bool, error) {
	n, err := s.client.Get(ctx, s.key(username)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lockout check: %w", err)
	}
	return n >= s.maxFailures, nil
}

func (s *LockoutStore) RecordFailure(ctx context.Context, username string) (bool, error) {
	key := s.key(username)
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("lockout increment: %w", err)
	}
	if n == 1 {
		// First failure opens the window.
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			return false, fmt.Errorf("lockout expire: %w", err)
		}
	}
	return n >= s.maxFailures, nil
}

func (s *LockoutStore) Reset(ctx context.Context, username string) error {
	return s.client.Del(ctx, s.key(username)).Err()
}

func (s *LockoutStore) key(username string) string {
	return "lockout:" + username
}
