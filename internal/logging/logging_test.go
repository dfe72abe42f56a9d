package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, closeFunc, err := NewFileLogger(logPath, "testservice", slog.LevelInfo)
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, closeFunc)

	logger.Info("file logger works", "key", "value")
	require.NoError(t, closeFunc())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "file logger works", entry["msg"])
	assert.Equal(t, "testservice", entry["service"])
	assert.Equal(t, "value", entry["key"])
}

func TestNewFileLoggerRespectsLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "app.log")

	logger, closeFunc, err := NewFileLogger(logPath, "testservice", slog.LevelWarn)
	require.NoError(t, err)

	logger.Info("below threshold")
	logger.Warn("at threshold")
	require.NoError(t, closeFunc())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "below threshold")
	assert.Contains(t, string(data), "at threshold")
}

func TestReplaceLevelNames(t *testing.T) {
	attr := replaceLevelNames(nil, slog.Attr{
		Key:   slog.LevelKey,
		Value: slog.AnyValue(LevelTrace),
	})
	assert.Equal(t, "TRACE", attr.Value.String())

	attr = replaceLevelNames(nil, slog.Attr{
		Key:   slog.LevelKey,
		Value: slog.AnyValue(LevelFatal),
	})
	assert.Equal(t, "FATAL", attr.Value.String())

	attr = replaceLevelNames(nil, slog.Attr{
		Key:   slog.LevelKey,
		Value: slog.AnyValue(slog.LevelInfo),
	})
	assert.Equal(t, "INFO", attr.Value.String())
}

func TestForService(t *testing.T) {
	logger := ForService("datastore")
	require.NotNil(t, logger)
}
