// Package log configures the process-wide slog default logger.
//
// Three output formats are supported, selected by LOG_FORMAT:
//
//	text (default) - logfmt-style text for production
//	json           - one JSON object per line
//	pretty         - colored output via tint, for local development
//
// LOG_LEVEL selects the level: debug, info, warn, error (default: info).
package log

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger from LOG_FORMAT and LOG_LEVEL.
func Setup() {
	SetupWith(formatFromEnv(), levelFromEnv())
}

// SetupWith installs the default logger with an explicit format and level.
func SetupWith(format string, level slog.Level) {
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case "pretty":
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func formatFromEnv() string {
	return strings.ToLower(os.Getenv("LOG_FORMAT"))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
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
