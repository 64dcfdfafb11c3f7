package model

import (
	"strings"
	"time"

	"meal-review-bot/internal/domain"
)

const (
	MinScore = 0
	MaxScore = 5
)

// Reviewer is the chat user who wrote a review.
type Reviewer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Review is a scored comment on a dish.
type Review struct {
	ID        int64     `json:"id"`
	DishID    int64     `json:"dish_id"`
	Reviewer  Reviewer  `json:"reviewer"`
	Score     uint8     `json:"score"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReview validates every field at once; score must already be inside
// [MinScore, MaxScore].
func NewReview(dishID int64, reviewer Reviewer, score int, details string) (*Review, error) {
	if dishID <= 0 || reviewer.ID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if score < MinScore || score > MaxScore {
		return nil, domain.ErrInvalidArgument
	}
	details = strings.TrimSpace(details)
	if details == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Review{
		DishID:    dishID,
		Reviewer:  reviewer,
		Score:     uint8(score),
		Details:   details,
		CreatedAt: time.Now(),
	}, nil
}

// ReviewLookup selects a review either by its own id or by dish id.
type ReviewLookup struct {
	ID     int64
	DishID int64
}

func ReviewByID(id int64) ReviewLookup         { return ReviewLookup{ID: id} }
func ReviewByDishID(dishID int64) ReviewLookup { return ReviewLookup{DishID: dishID} }
