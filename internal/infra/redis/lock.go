// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"meal-review-bot/internal/domain"

	"github.com/google/uuid"
)

const lockRetryInterval = 50 * time.Millisecond

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

var _ Locker = (*RedisLocker)(nil)

// RedisLocker is a SET NX lock with a random token per holder. The ttl
// frees the key if the holder dies; wait bounds how long TryLock retries.
type RedisLocker struct {
	client RedisClient
	wait   time.Duration
}

func NewLocker(c RedisClient, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: c, wait: wait}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	var lastErr error
	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl)
		if err == nil && ok {
			return token, nil
		}
		if err != nil {
			lastErr = err
		}
		if !time.Now().Add(lockRetryInterval).Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", domain.ErrChatBusy, ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("lock %s: %w", key, lastErr)
	}
	return "", fmt.Errorf("%w: %s held for over %s", domain.ErrChatBusy, key, l.wait)
}

// Unlock deletes key only while it still holds token, so a holder whose
// lock expired never frees someone else's.
func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.client.CompareAndDelete(ctx, key, token)
	return err
}

func chatLockKey(chatID int64) string {
	return fmt.Sprintf("conv_lock:%d", chatID)
}
