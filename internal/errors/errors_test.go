package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Parallel()

	base := NewStd("model file missing")
	err := New(base).
		Component("classifier").
		Category(CategoryModelLoad).
		Context("model_path", "/models/mnist.tflite").
		Build()

	assert.Equal(t, "model file missing", err.Error())
	assert.Equal(t, "classifier", err.Component)
	assert.Equal(t, CategoryModelLoad, err.Category)
	assert.Equal(t, "/models/mnist.tflite", err.Context["model_path"])
	require.ErrorIs(t, err, base)
}

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	err := Newf("plain failure").Build()
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
}

func TestCategoryMatching(t *testing.T) {
	t.Parallel()

	notFound := Newf("record %q not found", "abc-123").
		Component("datastore").
		Category(CategoryNotFound).
		Build()

	// Category survives another layer of wrapping.
	wrapped := fmt.Errorf("feedback lookup: %w", notFound)

	assert.True(t, IsCategory(wrapped, CategoryNotFound))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsCategory(wrapped, CategoryDatabase))
	assert.Equal(t, CategoryNotFound, GetCategory(wrapped))
	assert.Equal(t, CategoryGeneric, GetCategory(NewStd("plain")))
}
