// Package logger constructs the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to stdout. The level defaults to
// info; set DRAMCASK_LOG_LEVEL=debug for local debugging.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DRAMCASK_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
