// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// Messenger is the outbound transport the conversation layer talks to.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]InlineButton) error
}
