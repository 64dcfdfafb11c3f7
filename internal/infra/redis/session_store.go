package redis

import (
	"context"
	"time"

	"meal-review-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore shares conversation state and per-chat locks across bot
// replicas through Redis.
type SessionStore struct {
	*StateRepo
	locker  Locker
	lockTTL time.Duration
	log     *zerolog.Logger
}

func NewSessionStore(states *StateRepo, locker Locker, lockTTL time.Duration, logger *zerolog.Logger) *SessionStore {
	return &SessionStore{StateRepo: states, locker: locker, lockTTL: lockTTL, log: logger}
}

func (s *SessionStore) Lock(ctx context.Context, chatID int64) (func(), error) {
	key := chatLockKey(chatID)
	token, err := s.locker.TryLock(ctx, key, s.lockTTL)
	if err != nil {
		return nil, err
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		// release even when the update's ctx is already cancelled
		if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to release chat lock")
		}
	}, nil
}
