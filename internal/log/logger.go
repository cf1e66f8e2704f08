// Package log provides structured logging for the library.
//
// Output goes through log/slog. Two handlers are available: a coloured
// terminal handler for interactive use and slog's JSON handler for
// machine-readable output. A pass ID can be carried on the context so that
// every log line of one reconciliation pass is correlated.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output format.
type Format string

// Format values.
const (
	FormatPretty Format = "pretty"
	FormatJSON   Format = "json"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

const passIDKey contextKey = "pass_id"

// WithPassID attaches a reconciliation pass ID to the context.
func WithPassID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, passIDKey, id)
}

// PassID extracts the pass ID from the context, or "" when absent.
func PassID(ctx context.Context) string {
	if id, ok := ctx.Value(passIDKey).(string); ok {
		return id
	}
	return ""
}

// New creates a slog.Logger writing to stdout with the given format and level.
func New(format Format, level string) *slog.Logger {
	return NewWithWriter(os.Stdout, format, level)
}

// NewWithWriter creates a slog.Logger writing to w.
func NewWithWriter(w io.Writer, format Format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = newTerminalHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a level name to a slog.Level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ForPass returns logger with the context's pass ID attached, if present.
func ForPass(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := PassID(ctx); id != "" {
		return logger.With("pass_id", id)
	}
	return logger
}
