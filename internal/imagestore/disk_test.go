package imagestore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitnet/digitnet-go/internal/conf"
)

func TestDiskStoreSaveAndLoad(t *testing.T) {
	t.Parallel()

	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	img := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	ref, err := store.Save(context.Background(), "abc-123", img)
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	// The reference must point at bytes that were actually written.
	got, err := store.Load(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestDiskStoreLoadMissing(t *testing.T) {
	t.Parallel()

	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "no-such-ref.png")
	require.Error(t, err)
}

func TestDiskStoreNoTempLeftovers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "rec", []byte("img"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "rec.png", entries[0].Name())
}

func TestNewRespectsDisabledStore(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.ImageStore.Enabled = false

	store, err := New(settings)
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestNewDiskBackend(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.ImageStore.Enabled = true
	settings.ImageStore.Type = "disk"
	settings.ImageStore.Path = t.TempDir()

	store, err := New(settings)
	require.NoError(t, err)
	assert.IsType(t, &DiskStore{}, store)
}

func TestNewUnknownBackend(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.ImageStore.Enabled = true
	settings.ImageStore.Type = "carrier-pigeon"

	_, err := New(settings)
	require.Error(t, err)
}
