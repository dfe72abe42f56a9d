// Package imagestore persists submitted digit images and hands back an
// opaque reference string for the prediction record.
package imagestore

import (
	"context"
	"fmt"

	"github.com/digitnet/digitnet-go/internal/conf"
)

// Store is durable byte storage for submitted images, addressed by a
// reference string generated at save time. A returned reference always
// points at bytes that were actually written.
type Store interface {
	// Save writes the image bytes under a name derived from id and
	// returns the reference string.
	Save(ctx context.Context, id string, img []byte) (string, error)
	// Load reads image bytes back by their reference.
	Load(ctx context.Context, ref string) ([]byte, error)
}

// New creates the image store named by the settings. Returns nil when
// image persistence is disabled.
func New(settings *conf.Settings) (Store, error) {
	if !settings.ImageStore.Enabled {
		return nil, nil
	}

	switch settings.ImageStore.Type {
	case "disk":
		return NewDiskStore(settings.ImageStore.Path)
	case "minio":
		return NewMinioStore(&settings.ImageStore.Minio)
	default:
		return nil, fmt.Errorf("unknown image store type %q", settings.ImageStore.Type)
	}
}
