package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ObjectStore persists document objects on disk under a base directory,
// addressed by their object key.
type ObjectStore struct {
	baseDir string
}

// NewObjectStore ensures the base directory exists and returns a handle.
func NewObjectStore(baseDir string) (*ObjectStore, error) {
	if baseDir == "" {
		baseDir = "./documents"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create documents directory: %w", err)
	}
	return &ObjectStore{baseDir: baseDir}, nil
}

// Save writes the given bytes under the object key.
func (s *ObjectStore) Save(key string, data []byte) error {
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare object directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// SaveStream copies from reader into the object at key.
func (s *ObjectStore) SaveStream(key string, r io.Reader) error {
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare object directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("write object stream: %w", err)
	}
	return nil
}

// Open returns a read-only handle for the stored object.
func (s *ObjectStore) Open(key string) (*os.File, error) {
	file, err := os.Open(s.resolve(key))
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return file, nil
}

// Read returns the full contents of the stored object.
func (s *ObjectStore) Read(key string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(key))
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// Delete removes a stored object if present.
func (s *ObjectStore) Delete(key string) error {
	if err := os.Remove(s.resolve(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *ObjectStore) Path(key string) string {
	return s.resolve(key)
}

func (s *ObjectStore) resolve(key string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(key))
}
