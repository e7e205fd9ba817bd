package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func NewLogger(c *Config) *slog.Logger {
	return newLogger(c, os.Stdout)
}

// newLogger writes JSON when LOG_FORMAT=json and always in production.
func newLogger(c *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c != nil && (c.LogFormat == "json" || c.IsProduction()) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (c *Config) SlogLevel() slog.Level {
	if c == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(c.LogLevel) {
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
