package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelFromString(tt.in), tt.in)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	assert.Equal(t, Config{Level: "info", JSON: true}, ConfigFromEnv("production"))
	assert.Equal(t, Config{Level: "debug", JSON: false}, ConfigFromEnv("development"))

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", ConfigFromEnv("production").Level)
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(Config{Level: "warn", JSON: true}, &buf)

	l.Info("dropped")
	l.Warn("kept", "phone", "13800000000")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "13800000000", entry["phone"])
}
