//go:build !integration

package application_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/adapter"
	"meal-review-bot/internal/domain/ports/repository"
	"meal-review-bot/internal/infra/i18n"
	"meal-review-bot/internal/infra/memory"
	"meal-review-bot/internal/usecase"
)

// ---- Messenger ----

type sent struct {
	Op        string
	ChatID    int64
	MessageID int
	Text      string
	Rows      [][]adapter.InlineButton
}

type MockMessenger struct {
	mu   sync.Mutex
	Sent []sent

	Err error // returned by every call when set
}

var _ adapter.Messenger = (*MockMessenger)(nil)

func (m *MockMessenger) record(s sent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, s)
	return m.Err
}

func (m *MockMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	return m.record(sent{Op: "text", ChatID: chatID, Text: text})
}

func (m *MockMessenger) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	return m.record(sent{Op: "buttons", ChatID: chatID, Text: text, Rows: rows})
}

func (m *MockMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	return m.record(sent{Op: "edit", ChatID: chatID, MessageID: messageID, Text: text, Rows: rows})
}

func (m *MockMessenger) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Sent))
	for _, s := range m.Sent {
		out = append(out, s.Text)
	}
	return out
}

// ---- Conversation engine ----

type MockEngine struct {
	mu     sync.Mutex
	Inputs []usecase.Input

	AdvanceFunc func(ctx context.Context, chatID int64, state model.ConversationState, in usecase.Input) (usecase.Transition, error)
}

var _ usecase.ConversationUseCase = (*MockEngine)(nil)

func (m *MockEngine) Advance(ctx context.Context, chatID int64, state model.ConversationState, in usecase.Input) (usecase.Transition, error) {
	m.mu.Lock()
	m.Inputs = append(m.Inputs, in)
	m.mu.Unlock()
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, chatID, state, in)
	}
	return usecase.Transition{Next: state, Outcome: usecase.OutcomeIgnored}, nil
}

func (m *MockEngine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Inputs)
}

// ---- Session store that can fail writes ----

type failingStore struct {
	repository.SessionStore
	setErr error
}

func (f *failingStore) SetState(ctx context.Context, chatID int64, state model.ConversationState) error {
	return f.setErr
}

// =============================
// Utilities
// =============================

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("failed to load translator: %v", err)
	}
	return tr
}

func newStore() *memory.SessionStore {
	return memory.NewSessionStore(time.Second)
}
