package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sachin-security/sachin-security-sub000/internal/config"
)

// MinioStore keeps objects in a MinIO/S3 bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to cfg.Endpoint and makes sure the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.MinIOConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Put implements ObjectStore.
func (s *MinioStore) Put(ctx context.Context, key, contentType string, data io.Reader, size int64) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, data, size, opts); err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Get implements ObjectStore. The object is stat'ed first so missing keys fail here.
func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get object %q: %w", key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, 0, ErrObjectNotFound
		}
		return nil, 0, fmt.Errorf("stat object %q: %w", key, err)
	}
	return obj, info.Size, nil
}

// Delete implements ObjectStore. RemoveObject succeeds for absent keys, so the key is stat'ed first.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("stat object %q: %w", key, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// isNoSuchKey reports whether err means the object does not exist.
func isNoSuchKey(err error) bool {
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch strings.ToLower(strings.TrimSpace(minioErr.Code)) {
		case "nosuchkey", "notfound":
			return true
		}
	}
	return false
}
