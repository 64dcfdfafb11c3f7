package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meal-review-bot/internal/domain"
	"meal-review-bot/internal/domain/model"
	"meal-review-bot/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

// StateRepo keeps each chat's conversation state as one JSON value.
// A SET replaces the whole value, so readers never see a partial state.
type StateRepo struct {
	client RedisClient
	ttl    time.Duration
}

// NewStateRepo stores states with ttl as the idle timeout; zero keeps them
// until the flow ends.
func NewStateRepo(client RedisClient, ttl time.Duration) *StateRepo {
	return &StateRepo{client: client, ttl: ttl}
}

func (s *StateRepo) stateKey(chatID int64) string {
	return fmt.Sprintf("conv_state:%d", chatID)
}

func (s *StateRepo) SetState(ctx context.Context, chatID int64, state model.ConversationState) error {
	state, err := state.Normalize()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if state.IsIdle() {
		return s.ClearState(ctx, chatID)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(chatID), data, s.ttl)
}

func (s *StateRepo) GetState(ctx context.Context, chatID int64) (model.ConversationState, error) {
	data, err := s.client.Get(ctx, s.stateKey(chatID))
	if IsNil(err) {
		return model.Idle(), nil
	}
	if err != nil {
		return model.Idle(), err
	}

	var state model.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return model.Idle(), fmt.Errorf("decode state of chat %d: %w", chatID, err)
	}
	return state.Normalize()
}

func (s *StateRepo) ClearState(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.stateKey(chatID))
}
