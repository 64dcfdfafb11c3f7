package application

import "meal-review-bot/internal/domain/model"

// UpdateKind is the transport-neutral shape of an incoming update.
type UpdateKind string

const (
	UpdateText     UpdateKind = "text"
	UpdatePhoto    UpdateKind = "photo"
	UpdateCallback UpdateKind = "callback"
)

// Update is what the transport hands to the router. Only the fields
// matching Kind are set.
type Update struct {
	TraceID string
	ChatID  int64
	Sender  model.Reviewer
	Kind    UpdateKind

	Text     string
	PhotoRef string

	CallbackData string
	// MessageID is the message that carries the pressed keyboard.
	MessageID int
}
