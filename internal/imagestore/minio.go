package imagestore

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/errors"
	"github.com/digitnet/digitnet-go/internal/logging"
)

// MinioStore persists images as objects in a MinIO (or S3-compatible) bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the configured endpoint and ensures the bucket
// exists, creating it when missing.
func NewMinioStore(settings *conf.MinioSettings) (*MinioStore, error) {
	log := logging.ForService("imagestore")

	client, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure: settings.UseSSL,
	})
	if err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("endpoint", settings.Endpoint).
			Build()
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, settings.Bucket)
	if err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("bucket", settings.Bucket).
			Build()
	}
	if !exists {
		if err := client.MakeBucket(ctx, settings.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.New(err).
				Component("imagestore").
				Category(errors.CategoryImageStore).
				Context("bucket", settings.Bucket).
				Build()
		}
		log.Info("created image bucket", "bucket", settings.Bucket)
	}

	return &MinioStore{client: client, bucket: settings.Bucket}, nil
}

// Save uploads the image as <id>.png and returns the object name.
func (s *MinioStore) Save(ctx context.Context, id string, img []byte) (string, error) {
	objectName := id + ".png"

	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(img), int64(len(img)),
		minio.PutObjectOptions{ContentType: "image/png"})
	if err != nil {
		return "", errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("bucket", s.bucket).
			Context("object", objectName).
			Build()
	}

	return objectName, nil
}

// Load reads an object's bytes back by name.
func (s *MinioStore) Load(ctx context.Context, ref string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, ref, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("bucket", s.bucket).
			Context("object", ref).
			Build()
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, errors.New(err).
			Component("imagestore").
			Category(errors.CategoryImageStore).
			Context("bucket", s.bucket).
			Context("object", ref).
			Build()
	}
	return data, nil
}

var _ Store = (*MinioStore)(nil)
