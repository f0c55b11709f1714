// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler format and minimum level.
type Config struct {
	Level string
	JSON  bool
}

// ConfigFromEnv reads LOG_LEVEL and uses JSON output in production.
func ConfigFromEnv(appEnv string) Config {
	lvl := os.Getenv("LOG_LEVEL")
	if lvl == "" {
		if appEnv == "production" {
			lvl = "info"
		} else {
			lvl = "debug"
		}
	}
	return Config{Level: lvl, JSON: appEnv == "production"}
}

func levelFromString(l string) slog.Level {
	switch strings.ToLower(l) {
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

// New builds a logger writing to w.
func New(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(cfg.Level)}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init builds a stdout logger and installs it as the slog default.
func Init(cfg Config) *slog.Logger {
	l := New(cfg, os.Stdout)
	slog.SetDefault(l)
	return l
}
