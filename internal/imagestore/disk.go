package imagestore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/digitnet/digitnet-go/internal/errors"
)

// DiskStore persists images as PNG files under a base directory.
type DiskStore struct {
	basePath string
}

// NewDiskStore creates the base directory if needed and returns the store.
func NewDiskStore(basePath string) (*DiskStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("path", basePath).
			Build()
	}
	return &DiskStore{basePath: basePath}, nil
}

// Save writes the image to <base>/<id>.png. The write goes through a temp
// file and rename so a returned reference never points at partial bytes.
func (s *DiskStore) Save(ctx context.Context, id string, img []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := filepath.Join(s.basePath, id+".png")

	tmp, err := os.CreateTemp(s.basePath, id+".*.tmp")
	if err != nil {
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("ref", ref).
			Build()
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("ref", ref).
			Build()
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("ref", ref).
			Build()
	}

	if err := os.Rename(tmpName, ref); err != nil {
		os.Remove(tmpName)
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("ref", ref).
			Build()
	}

	return ref, nil
}

// Load reads image bytes back by their reference.
func (s *DiskStore) Load(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("ref", ref).
			Build()
	}
	return data, nil
}

var _ Store = (*DiskStore)(nil)
