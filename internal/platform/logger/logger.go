package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Text on stdout; level via EBIRTH_LOG_LEVEL.
func New() *slog.Logger {
	level := slog.LevelInfo
	if v := os.Getenv("EBIRTH_LOG_LEVEL"); v != "" {
		_ = level.UnmarshalText([]byte(v))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
