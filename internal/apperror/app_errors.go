package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrIneligibleActor   = errors.New("player cannot act in this round")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnsupportedAction = errors.New("unsupported round action")

	ErrAlreadyFinished = fmt.Errorf("%w: game is already finished", ErrInvalidTransition)
	ErrRoundClosed     = fmt.Errorf("%w: round is already closed", ErrInvalidTransition)

	// ErrInsufficientFunds is a warning: it is logged and reported, never returned to callers of the round engine.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// ValidationError carries every message produced while validating one request.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (that *ValidationError) Error() string {
	if len(that.Messages) == 0 {
		return ErrValidation.Error()
	}

	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(that.Messages, "; "))
}

func (that *ValidationError) Unwrap() error {
	return ErrValidation
}

// Messages flattens err into the human-readable strings returned to clients.
func Messages(err error) []string {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var messages []string
		for _, inner := range joined.Unwrap() {
			messages = append(messages, Messages(inner)...)
		}

		return messages
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Messages) > 0 {
		return validationErr.Messages
	}

	return []string{err.Error()}
}
