// Package logging provides the structured logger factory for the devbolt
// SDK.
//
// It configures [log/slog] with a JSON handler and a configurable minimum
// level. The SDK functions correctly with logging fully disabled; [Discard]
// returns the no-op logger used when a caller supplies none.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a [slog.Logger] that writes JSON to stderr at the given level.
// Accepted level strings (case-insensitive): "debug", "info", "warn",
// "error". An empty string defaults to "warn", the SDK's quiet default.
func New(level string) *slog.Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter creates a [slog.Logger] writing JSON to w at the given level.
func NewWithWriter(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a level string to a [slog.Level].
// Returns [slog.LevelWarn] for empty or unrecognised values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
