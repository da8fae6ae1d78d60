package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger with level parsed from string.
func New(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

// NewService returns a logger tagged with the service name so logs from
// all services can be told apart in a shared stream.
func NewService(service, level string) *slog.Logger {
	return New(level).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
