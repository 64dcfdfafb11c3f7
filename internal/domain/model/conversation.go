package model

import "fmt"

// StateKind tags which step of which flow a chat is in.
type StateKind string

const (
	StateIdle                          StateKind = "idle"
	StateAwaitingDishName              StateKind = "awaiting_dish_name"
	StateAwaitingDishPhoto             StateKind = "awaiting_dish_photo"
	StateAwaitingReviewText            StateKind = "awaiting_review_text"
	StateAwaitingReviewScore           StateKind = "awaiting_review_score"
	StateAwaitingRestaurantNameEdit    StateKind = "awaiting_restaurant_name_edit"
	StateAwaitingRestaurantAddressEdit StateKind = "awaiting_restaurant_address_edit"
)

// ConversationState is a tagged variant: Kind decides which payload fields
// are meaningful. Build it with the constructors below so the payload always
// matches the kind. The zero value is Idle.
type ConversationState struct {
	Kind         StateKind `json:"kind"`
	RestaurantID int64     `json:"restaurant_id,omitempty"`
	DishID       int64     `json:"dish_id,omitempty"`
	DishName     string    `json:"dish_name,omitempty"`
	ReviewText   string    `json:"review_text,omitempty"`
}

func Idle() ConversationState { return ConversationState{Kind: StateIdle} }

func AwaitingDishName(restaurantID int64) ConversationState {
	return ConversationState{Kind: StateAwaitingDishName, RestaurantID: restaurantID}
}

func AwaitingDishPhoto(restaurantID int64, dishName string) ConversationState {
	return ConversationState{Kind: StateAwaitingDishPhoto, RestaurantID: restaurantID, DishName: dishName}
}

func AwaitingReviewText(dishID int64) ConversationState {
	return ConversationState{Kind: StateAwaitingReviewText, DishID: dishID}
}

func AwaitingReviewScore(dishID int64, reviewText string) ConversationState {
	return ConversationState{Kind: StateAwaitingReviewScore, DishID: dishID, ReviewText: reviewText}
}

func AwaitingRestaurantNameEdit(restaurantID int64) ConversationState {
	return ConversationState{Kind: StateAwaitingRestaurantNameEdit, RestaurantID: restaurantID}
}

func AwaitingRestaurantAddressEdit(restaurantID int64) ConversationState {
	return ConversationState{Kind: StateAwaitingRestaurantAddressEdit, RestaurantID: restaurantID}
}

// IsIdle treats the empty kind as Idle so a zero value never looks like a flow.
func (s ConversationState) IsIdle() bool {
	return s.Kind == StateIdle || s.Kind == ""
}

// Normalize maps the zero value to Idle and rejects unknown kinds.
func (s ConversationState) Normalize() (ConversationState, error) {
	switch s.Kind {
	case "", StateIdle:
		return Idle(), nil
	case StateAwaitingDishName, StateAwaitingDishPhoto,
		StateAwaitingReviewText, StateAwaitingReviewScore,
		StateAwaitingRestaurantNameEdit, StateAwaitingRestaurantAddressEdit:
		return s, nil
	default:
		return Idle(), fmt.Errorf("unknown conversation state %q", s.Kind)
	}
}

func (s ConversationState) String() string {
	switch s.Kind {
	case StateAwaitingDishName, StateAwaitingRestaurantNameEdit, StateAwaitingRestaurantAddressEdit:
		return fmt.Sprintf("%s(%d)", s.Kind, s.RestaurantID)
	case StateAwaitingDishPhoto:
		return fmt.Sprintf("%s(%d,%q)", s.Kind, s.RestaurantID, s.DishName)
	case StateAwaitingReviewText:
		return fmt.Sprintf("%s(%d)", s.Kind, s.DishID)
	case StateAwaitingReviewScore:
		return fmt.Sprintf("%s(%d,%q)", s.Kind, s.DishID, s.ReviewText)
	default:
		return string(StateIdle)
	}
}
