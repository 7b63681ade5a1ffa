package logger

import (
	"log/slog"
	"os"
)

// Log is usable before Init so packages under test never see a nil logger
var Log = slog.Default()

func Init(environment string) {
	level := slog.LevelDebug
	if environment == "production" {
		level = slog.LevelInfo
	}

	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler).With("service", "skill-sync-backend")
}
