package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitnet/digitnet-go/internal/conf"
)

func TestNewFileLoggerDisabled(t *testing.T) {
	settings := &conf.Settings{}
	settings.Main.Log.Enabled = false

	logger, closeFunc, err := newFileLogger(settings)
	require.NoError(t, err)
	assert.Nil(t, logger)
	assert.Nil(t, closeFunc)
}

func TestNewFileLoggerEnabled(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "digitnet.log")

	settings := &conf.Settings{}
	settings.Main.Log.Enabled = true
	settings.Main.Log.Path = logPath

	logger, closeFunc, err := newFileLogger(settings)
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, closeFunc)

	logger.Info("prediction stored", "record_id", "abc")
	require.NoError(t, closeFunc())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "prediction stored")
	assert.Contains(t, string(data), "abc")
}

func TestNewFileLoggerDebugLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "digitnet.log")

	settings := &conf.Settings{}
	settings.Debug = true
	settings.Main.Log.Enabled = true
	settings.Main.Log.Path = logPath

	logger, closeFunc, err := newFileLogger(settings)
	require.NoError(t, err)

	logger.Debug("debug detail")
	require.NoError(t, closeFunc())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug detail")
}
