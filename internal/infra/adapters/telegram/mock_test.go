//go:build !integration

package telegram

import (
	"context"
	"io"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"meal-review-bot/internal/application"
)

// mockBotAPI records outbound calls and serves updates from a channel.
type mockBotAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	updates   chan tgbotapi.Update
	stopped   bool

	SendFunc func(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

func newMockBotAPI() *mockBotAPI {
	return &mockBotAPI{updates: make(chan tgbotapi.Update, 16)}
}

func (m *mockBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	m.sent = append(m.sent, c)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(c)
	}
	return tgbotapi.Message{}, nil
}

func (m *mockBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requested = append(m.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockBotAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updates
}

func (m *mockBotAPI) StopReceivingUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *mockBotAPI) Requested() []tgbotapi.Chattable {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), m.requested...)
}

// mockHandler forwards every update it gets to seen.
type mockHandler struct {
	seen chan application.Update
}

func (h *mockHandler) HandleUpdate(ctx context.Context, u application.Update) error {
	h.seen <- u
	return nil
}

type mockLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return m.AllowFunc(ctx, key, limit, window)
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: chatID, UserName: "avimitin"},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}}
}
