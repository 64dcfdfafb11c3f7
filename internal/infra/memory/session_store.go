// Package memory keeps conversation state in process memory.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"meal-review-bot/internal/domain"
	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.SessionStore = (*SessionStore)(nil)

type entry struct {
	state     model.ConversationState
	updatedAt time.Time
}

// chatLock is a one-slot semaphore so waiting can honour ctx.
type chatLock struct {
	slot chan struct{}
	refs int
}

// SessionStore is the single map keyed by chat id plus per-chat locks.
// Locks are created on demand and dropped when nobody holds or waits on them.
type SessionStore struct {
	mu       sync.Mutex
	states   map[int64]entry
	locks    map[int64]*chatLock
	lockWait time.Duration
	now      func() time.Time
}

// NewSessionStore builds an empty store. lockWait bounds how long Lock
// waits for a busy chat; zero waits until ctx is done.
func NewSessionStore(lockWait time.Duration) *SessionStore {
	return &SessionStore{
		states:   make(map[int64]entry),
		locks:    make(map[int64]*chatLock),
		lockWait: lockWait,
		now:      time.Now,
	}
}

func (s *SessionStore) GetState(ctx context.Context, chatID int64) (model.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.states[chatID]
	if !ok {
		return model.Idle(), nil
	}
	return e.state, nil
}

func (s *SessionStore) SetState(ctx context.Context, chatID int64, state model.ConversationState) error {
	state, err := state.Normalize()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if state.IsIdle() {
		delete(s.states, chatID)
		return nil
	}
	s.states[chatID] = entry{state: state, updatedAt: s.now()}
	return nil
}

func (s *SessionStore) ClearState(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
	return nil
}

// Lock blocks until the chat is free. It fails with domain.ErrChatBusy when
// lockWait elapses or ctx is done first.
func (s *SessionStore) Lock(ctx context.Context, chatID int64) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[chatID]
	if !ok {
		l = &chatLock{slot: make(chan struct{}, 1)}
		s.locks[chatID] = l
	}
	l.refs++
	s.mu.Unlock()

	var timeout <-chan time.Time
	if s.lockWait > 0 {
		timer := time.NewTimer(s.lockWait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case l.slot <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-l.slot
				s.unref(chatID, l)
			})
		}, nil
	case <-timeout:
		s.unref(chatID, l)
		return nil, fmt.Errorf("%w: waited %s", domain.ErrChatBusy, s.lockWait)
	case <-ctx.Done():
		s.unref(chatID, l)
		return nil, fmt.Errorf("%w: %v", domain.ErrChatBusy, ctx.Err())
	}
}

func (s *SessionStore) unref(chatID int64, l *chatLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, chatID)
	}
}

// ExpireIdle returns every conversation untouched for longer than maxIdle
// to Idle and reports how many were dropped. Chats with an update in
// flight are left alone.
func (s *SessionStore) ExpireIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	if maxIdle <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for chatID, e := range s.states {
		if _, busy := s.locks[chatID]; busy {
			continue
		}
		if e.updatedAt.Before(cutoff) {
			delete(s.states, chatID)
			n++
		}
	}
	return n, nil
}

// Len reports how many chats are mid-flow.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
