// Package logger builds the process-wide *slog.Logger from the configured
// environment.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a logger writing to stdout.
//
// Development (dev): human-readable text output at DEBUG level.
// Staging: JSON at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func New(env string) *slog.Logger {
	return NewWriter(env, os.Stdout)
}

// NewWriter is New with an explicit destination.
func NewWriter(env string, w io.Writer) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default: // "dev" and anything unrecognised
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
