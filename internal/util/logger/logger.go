package logger

import (
	"log/slog"
	"os"
)

// New builds the process logger. Development gets a human-readable text
// handler, everything else JSON for log shipping.
func New(appEnv string) *slog.Logger {
	var handler slog.Handler

	if appEnv == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return slog.New(handler)
}
