package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	lg.Debug(ctx, "debug msg")
	lg.Info(ctx, "info msg")
	lg.Warn(ctx, "warn msg")
	lg.Error(ctx, "error msg")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "error", entries[1]["level"])
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLoggerWithWriter("info", &buf)

	lg.Info(context.Background(), "hello", Field{Key: "count", Value: 3})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0]["msg"])
	assert.Equal(t, float64(3), entries[0]["count"])
	assert.NotEmpty(t, entries[0]["timestamp"])
}

func TestLogger_WithStrategy(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLoggerWithWriter("info", &buf).WithStrategy("payments", "Timeout", "Timeout")

	lg.Info(context.Background(), "evt")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "payments", entries[0]["pipeline"])
	assert.Equal(t, "Timeout", entries[0]["strategy"])
	assert.Equal(t, "Timeout", entries[0]["strategy_type"])
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLogLevel("info"))
	assert.Equal(t, LevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, LevelError, ParseLogLevel("error"))
	assert.Equal(t, LevelInfo, ParseLogLevel("bogus"))
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "error", LevelError.String())
}
