package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/sachin-security/sachin-security-sub000/internal/database"
)

// blob is the document written by DatabaseStore.
type blob struct {
	Key         string `bson:"_id" json:"_id"`
	ContentType string `bson:"contentType" json:"contentType"`
	Size        int64  `bson:"size" json:"size"`
	Data        string `bson:"data" json:"data"`
}

// DatabaseStore keeps base64 encoded objects in a document collection.
type DatabaseStore struct {
	coll database.Collection
}

// NewDatabaseStore stores blobs in coll.
func NewDatabaseStore(coll database.Collection) *DatabaseStore {
	return &DatabaseStore{coll: coll}
}

// Put implements ObjectStore.
func (s *DatabaseStore) Put(ctx context.Context, key, contentType string, data io.Reader, size int64) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read object %q: %w", key, err)
	}
	_, err = s.coll.Insert(ctx, blob{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(raw)),
		Data:        base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Get implements ObjectStore.
func (s *DatabaseStore) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	var b blob
	if err := s.coll.FindOne(ctx, database.ByStorageID(key), &b); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, fmt.Errorf("get object %q: %w", key, err)
	}
	raw, err := base64.StdEncoding.DecodeString(b.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("decode object %q: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(raw)), int64(len(raw)), nil
}

// Delete implements ObjectStore.
func (s *DatabaseStore) Delete(ctx context.Context, key string) error {
	err := s.coll.Delete(ctx, database.ByStorageID(key))
	if errors.Is(err, database.ErrNotFound) {
		return ErrObjectNotFound
	}
	return err
}
