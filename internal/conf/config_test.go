package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitnet/digitnet-go/internal/errors"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Model.Path = "models/mnist.tflite"
	s.Model.Timeout = 10
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "test.db"
	s.Output.Timeout = 5
	s.ImageStore.Enabled = true
	s.ImageStore.Type = "disk"
	s.ImageStore.Path = "images/"
	return s
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsRejectsMissingModelPath(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Model.Path = ""
	err := ValidateSettings(s)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestValidateSettingsRejectsBothDatabases(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Output.MySQL.Enabled = true
	require.Error(t, ValidateSettings(s))
}

func TestValidateSettingsRejectsNoDatabase(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Output.SQLite.Enabled = false
	require.Error(t, ValidateSettings(s))
}

func TestValidateSettingsImageStore(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.ImageStore.Type = "minio"
	err := ValidateSettings(s)
	require.Error(t, err, "minio backend without endpoint must be rejected")

	s.ImageStore.Minio.Endpoint = "localhost:9000"
	s.ImageStore.Minio.Bucket = "digits"
	require.NoError(t, ValidateSettings(s))

	s.ImageStore.Type = "s3"
	require.Error(t, ValidateSettings(s), "unknown backend type must be rejected")

	// Disabled image store skips backend validation entirely.
	s.ImageStore.Enabled = false
	require.NoError(t, ValidateSettings(s))
}
