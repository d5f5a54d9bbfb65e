package service

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/outings/internal/apperr"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{apperr.Invalid("title", "is required"), connect.CodeInvalidArgument},
		{fmt.Errorf("get event: %w", apperr.ErrNotFound), connect.CodeNotFound},
		{apperr.ErrEventFull, connect.CodeFailedPrecondition},
		{apperr.ErrEventPast, connect.CodeFailedPrecondition},
		{apperr.ErrAlreadySubscribed, connect.CodeAlreadyExists},
		{apperr.ErrForbidden, connect.CodePermissionDenied},
		{apperr.ErrUnavailable, connect.CodeUnavailable},
		{errors.New("boom"), connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := codeOf(tt.err); got != tt.want {
			t.Errorf("codeOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
