package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json by default", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "info", "").Info("discernment evaluated", "request_id", "req-1")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "discernment evaluated", line["msg"])
		assert.Equal(t, "req-1", line["request_id"])
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "info", "TEXT").Info("engine reloaded")
		assert.Contains(t, buf.String(), `msg="engine reloaded"`)
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, "warn", "json")
		log.Info("hidden")
		assert.Zero(t, buf.Len())
		log.Warn("shown")
		assert.NotZero(t, buf.Len())
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
