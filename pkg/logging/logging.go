// Package logging configures colored structured logging with tint.
//
// Usage:
//
//	logging.Setup()                          // level from LOG_LEVEL env
//	logging.SetupWithLevel(slog.LevelDebug)  // explicit level override
//	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures colored logging at the level specified by LOG_LEVEL env var
// (default: INFO).
func Setup() {
	SetupWithLevel(ParseLevel(os.Getenv("LOG_LEVEL")))
}

// SetupWithLevel configures colored logging on stderr at the given level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(New(os.Stderr, level))
}

// New returns a tint-backed logger writing to w. Color is disabled when w is
// not stderr so log files stay readable.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		AddSource:  level == slog.LevelDebug,
		NoColor:    w != os.Stderr,
	}))
}

// ParseLevel maps a level name to a slog level. Unknown names yield INFO.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
