package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the application logger from LOG_LEVEL and LOG_FORMAT.
// An empty format means text in development and JSON everywhere else.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.LogLevel)}

	format := strings.ToLower(c.LogFormat)
	if format == "" {
		format = "json"
		if c.IsDev() {
			format = "text"
		}
	}

	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
