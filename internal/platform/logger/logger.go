package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output so log search
// can key on the audit event fields.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
