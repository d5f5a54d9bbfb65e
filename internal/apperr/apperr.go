// Package apperr defines the error taxonomy shared by the store, the
// managers and the RPC layer. Callers match with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrEventFull         = errors.New("event is full")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrEventPast         = errors.New("event has already started")
	ErrForbidden         = errors.New("only the organizer can do this")
	ErrConflict          = errors.New("conflict")
	ErrUnavailable       = errors.New("store unavailable")
)

// ValidationError reports malformed or out-of-range input for one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Invalid builds a *ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Field returns the offending field of a wrapped *ValidationError, or "".
func Field(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
