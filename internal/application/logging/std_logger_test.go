package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, level, format string) *StdLogger {
	l := NewStdLogger(buf, level, format)
	l.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return l
}

func TestStdLogger_TextFormatSortsMetadata(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, "info", "text")

	l.Log(LevelInfo, "day advanced", map[string]interface{}{"day": 3, "balance": "10.5"})

	assert.Equal(t, "2025-01-01T00:00:00Z INFO  day advanced balance=10.5 day=3\n", buf.String())
}

func TestStdLogger_FiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, "warn", "text")

	l.Log(LevelInfo, "hidden", nil)
	l.Log(LevelError, "shown", nil)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestStdLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, "debug", "json")

	l.Log(LevelDebug, "order created", map[string]interface{}{"order_id": 7})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order created", entry["msg"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, float64(7), entry["order_id"])
}

func TestLoggerFromContext_FallsBackToNoOp(t *testing.T) {
	logger := LoggerFromContext(context.Background())

	assert.NotPanics(t, func() { logger.Log(LevelInfo, "ignored", nil) })
}

func TestLoggerFromContext_ReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, "info", "text")
	ctx := WithLogger(context.Background(), l)

	LoggerFromContext(ctx).Log(LevelInfo, "attached", nil)

	assert.Contains(t, buf.String(), "attached")
}
