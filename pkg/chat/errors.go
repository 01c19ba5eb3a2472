package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound means the authenticated identity has no user row.
	ErrAccountNotFound = errors.New("account not found")

	// ErrConversationNotFound covers both a missing conversation and one
	// owned by another user. The two cases are collapsed on purpose so
	// callers cannot probe for the existence of foreign conversations.
	ErrConversationNotFound = errors.New("conversation not found")
)

// InsufficientBalanceError is returned by the pre-flight check before any
// provider call or mutation happens. It carries the current balance so the
// caller can report it.
type InsufficientBalanceError struct {
	Balance int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient token balance: %d", e.Balance)
}
