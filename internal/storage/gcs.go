package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStore keeps objects in a Google Cloud Storage bucket.
type GCSStore struct {
	bucket *gcs.BucketHandle
	client *gcs.Client
}

// NewGCSStore uses application default credentials.
func NewGCSStore(ctx context.Context, bucketName string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %v", err)
	}
	return &GCSStore{bucket: client.Bucket(bucketName), client: client}, nil
}

// Put implements ObjectStore.
func (s *GCSStore) Put(ctx context.Context, key, contentType string, data io.Reader, _ int64) error {
	wc := s.bucket.Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write data to object: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close object writer: %v", err)
	}
	return nil
}

// Get implements ObjectStore.
func (s *GCSStore) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	rc, err := s.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, 0, ErrObjectNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open object reader: %v", err)
	}
	return rc, rc.Attrs.Size, nil
}

// Delete implements ObjectStore.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	return err
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
