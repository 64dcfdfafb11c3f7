//go:build !integration

package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"meal-review-bot/internal/domain"

	"github.com/rs/zerolog"
)

func newTestSessionStore(client *mockRedisClient, wait time.Duration) *SessionStore {
	logger := zerolog.New(io.Discard)
	return NewSessionStore(NewStateRepo(client, 0), NewLocker(client, wait), time.Minute, &logger)
}

func TestSessionStore_Lock(t *testing.T) {
	ctx := context.Background()

	t.Run("second holder waits out and gets ErrChatBusy", func(t *testing.T) {
		// Arrange
		client := newMockRedisClient()
		store := newTestSessionStore(client, 120*time.Millisecond)
		release, err := store.Lock(ctx, 42)
		if err != nil {
			t.Fatalf("first Lock failed: %v", err)
		}
		defer release()

		// Act
		_, err = store.Lock(ctx, 42)

		// Assert
		if !errors.Is(err, domain.ErrChatBusy) {
			t.Errorf("expected ErrChatBusy, got %v", err)
		}
	})

	t.Run("release frees the chat once", func(t *testing.T) {
		client := newMockRedisClient()
		store := newTestSessionStore(client, 100*time.Millisecond)

		release, err := store.Lock(ctx, 42)
		if err != nil {
			t.Fatalf("Lock failed: %v", err)
		}
		release()
		release()

		if _, ok := client.value("conv_lock:42"); ok {
			t.Fatal("expected the lock key to be gone")
		}
		again, err := store.Lock(ctx, 42)
		if err != nil {
			t.Fatalf("expected Lock after release to succeed, got %v", err)
		}
		again()
	})

	t.Run("stale release does not free another holder's lock", func(t *testing.T) {
		// Arrange: first holder's key expired and a second holder took over
		client := newMockRedisClient()
		store := newTestSessionStore(client, 100*time.Millisecond)
		stale, _ := store.Lock(ctx, 42)
		client.values["conv_lock:42"] = "someone-else"

		// Act
		stale()

		// Assert
		if v, _ := client.value("conv_lock:42"); v != "someone-else" {
			t.Errorf("expected the other holder's token to survive, got %q", v)
		}
	})

	t.Run("different chats do not contend", func(t *testing.T) {
		client := newMockRedisClient()
		store := newTestSessionStore(client, 50*time.Millisecond)

		r1, err1 := store.Lock(ctx, 1)
		r2, err2 := store.Lock(ctx, 2)

		if err1 != nil || err2 != nil {
			t.Fatalf("expected both locks, got %v / %v", err1, err2)
		}
		r1()
		r2()
	})

	t.Run("SETNX errors surface after the wait", func(t *testing.T) {
		client := newMockRedisClient()
		boom := errors.New("connection reset")
		client.SetNXFunc = func(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
			return false, boom
		}
		store := newTestSessionStore(client, 60*time.Millisecond)

		_, err := store.Lock(ctx, 42)

		if !errors.Is(err, boom) {
			t.Errorf("expected %v, got %v", boom, err)
		}
	})
}
