package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemStore writes objects below a root directory.
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates root if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileSystemStore{root: abs}, nil
}

func (s *FileSystemStore) path(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if p == s.root || !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("object key %q escapes storage root", key)
	}
	return p, nil
}

// Put writes to a temporary file and renames it into place.
func (s *FileSystemStore) Put(_ context.Context, key, _ string, data io.Reader, _ int64) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Get implements ObjectStore.
func (s *FileSystemStore) Get(_ context.Context, key string) (io.ReadCloser, int64, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, ErrObjectNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Delete implements ObjectStore.
func (s *FileSystemStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrObjectNotFound
	}
	return err
}
