package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestJSONLoggerWritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json").With("component", "attribution")

	log.Debug("hidden")
	log.Info("captured", "code", "ig-promo")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "captured", record["msg"])
	assert.Equal(t, "attribution", record["component"])
	assert.Equal(t, "ig-promo", record["code"])
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "debug", "text").Debug("lead created", "id", 7)
	assert.Contains(t, buf.String(), "msg=\"lead created\"")
	assert.Contains(t, buf.String(), "id=7")
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	New(Config{Level: "info", FilePath: path}).Warn("slow query", "ms", 812)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "slow query")
}
