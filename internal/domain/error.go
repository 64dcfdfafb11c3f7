package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// ErrOperationFailed is the single class the conversation layer sees for
	// catalogue and transport failures.
	ErrOperationFailed = errors.New("operation failed")

	ErrChatBusy = errors.New("chat is busy with another update")
)
