package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"hermannm.dev/devlog"
)

// ParseLevel parses "debug", "info", "warn" or "error".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewSlogger returns a human-readable logger writing to w.
func NewSlogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(devlog.NewHandler(w, &devlog.Options{Level: level}))
}

// Setup installs a human-readable default logger writing to w.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	logger := NewSlogger(w, level)
	slog.SetDefault(logger)
	return logger
}
