// Package storage implements the object storage port used by uploads.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sachin-security/sachin-security-sub000/internal/config"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

// ErrObjectNotFound is returned by Get and Delete for unknown keys.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore puts bytes under a key and reads them back.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data io.Reader, size int64) error
	// Get returns the object body and its size. Callers close the body.
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Backend. store backs the database backend.
func New(ctx context.Context, cfg config.StorageConfig, store database.Store) (ObjectStore, error) {
	switch cfg.Backend {
	case config.StorageDatabase:
		return NewDatabaseStore(store.Collection(model.CollectionBlobs)), nil
	case config.StorageFilesystem:
		return NewFileSystemStore(cfg.Dir)
	case config.StorageMinIO:
		return NewMinioStore(ctx, cfg.MinIO)
	case config.StorageGCS:
		return NewGCSStore(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Close releases backends that hold a client. Other backends are left as they are.
func Close(objects ObjectStore) error {
	if c, ok := objects.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
