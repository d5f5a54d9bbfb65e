package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, display name, duration, and any error code.
// Business rejections (full, already subscribed, not found) are expected
// outcomes and logged at info level.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			name := GetDisplayName(ctx) // empty for anonymous callers

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					slog.Log(ctx, levelFor(connectErr.Code()), "RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"display_name", name,
						"duration_ms", duration,
					)
				} else {
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"display_name", name,
						"duration_ms", duration,
					)
				}
			} else {
				slog.Info("RPC ok",
					"procedure", procedure,
					"display_name", name,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}

func levelFor(code connect.Code) slog.Level {
	switch code {
	case connect.CodeNotFound, connect.CodeAlreadyExists, connect.CodeFailedPrecondition,
		connect.CodeInvalidArgument, connect.CodePermissionDenied:
		return slog.LevelInfo
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
