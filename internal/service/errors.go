package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/internal/apperr"
)

// toConnectError maps domain errors to Connect codes. Validation messages
// name the offending field.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case apperr.IsValidation(err):
		return connect.CodeInvalidArgument
	case errors.Is(err, apperr.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, apperr.ErrEventFull), errors.Is(err, apperr.ErrEventPast):
		return connect.CodeFailedPrecondition
	case errors.Is(err, apperr.ErrAlreadySubscribed), errors.Is(err, apperr.ErrConflict):
		return connect.CodeAlreadyExists
	case errors.Is(err, apperr.ErrForbidden):
		return connect.CodePermissionDenied
	case errors.Is(err, apperr.ErrUnavailable):
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}
