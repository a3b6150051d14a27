// ============================================================================
// Task Engine Logging
// ============================================================================
//
// Package: internal/logging
// File: logging.go
// Purpose: Process-wide slog setup. Workers and the scheduler take a
// *slog.Logger at construction (falling back to slog.Default() when given
// nil) and processors receive one per call, following asynctask.Manager's
// WithLogger(handler slog.Handler) option. The CLI (internal/cli, run by
// cmd/taskengine) is the only caller of New; it passes the logger down
// rather than holding it in a package-level variable.
//
// ============================================================================

package logging

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

// Options configures the process logger.
type Options struct {
	// Level is the minimum level logged ("debug", "info", "warn", "error").
	Level string
	// JSON selects slog's structured JSON handler instead of tint's
	// colorized development handler.
	JSON bool
}

// New builds the process-wide logger. Development runs default to tint's
// colorized, timestamped console handler; production/JSON mode uses
// slog.NewJSONHandler so log aggregators can parse it.
func New(opts Options) *slog.Logger {
	level := parseLevel(opts.Level)

	if opts.JSON {
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		return slog.New(handler)
	}

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
	})
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch s {
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
