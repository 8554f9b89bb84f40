package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesCarryServiceAndAction(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("cafe-web", "info", &buf)

	l.Error("submit_order", "order failed", errors.New("boom"), slog.Int64("order_id", 42))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cafe-web", line["service"])
	assert.Equal(t, "submit_order", line["action"])
	assert.Equal(t, "order failed", line["msg"])
	assert.Equal(t, "boom", line["error"])
	assert.EqualValues(t, 42, line["order_id"])
	assert.Equal(t, "ERROR", line["level"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("cafe-web", "WARN", &buf)

	l.Debug("a", "hidden")
	l.Info("a", "hidden")
	l.Warn("a", "shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg":"shown"`)
}
