package repository

import (
	"context"

	"meal-review-bot/internal/domain/model"
)

// StateRepository is the port for reading and writing a chat's conversation state.
// GetState returns Idle, not an error, when nothing is stored for the chat.
type StateRepository interface {
	SetState(ctx context.Context, chatID int64, state model.ConversationState) error
	GetState(ctx context.Context, chatID int64) (model.ConversationState, error)
	ClearState(ctx context.Context, chatID int64) error
}

// SessionStore adds per-chat mutual exclusion so a read-modify-write of one
// chat's state never interleaves with another update for the same chat.
// release must be called exactly once.
type SessionStore interface {
	StateRepository
	Lock(ctx context.Context, chatID int64) (release func(), err error)
}
