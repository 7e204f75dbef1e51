package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrReadOnly = errors.New("store is read-only")
)

// Store is a minimal abstraction to read and write files.
type Store interface {
	// ReadFile reads the contents of path from the store.
	// path should be a relative path (e.g., "openapi/api.yaml").
	ReadFile(path string) ([]byte, error)
	// WriteFile write the given contents to path in the store.
	// Stores that do not support writing should return ErrReadOnly.
	WriteFile(path string, contents []byte) error
}

// DiskStore is an implementation of Store that reads files from the local file system.
type DiskStore struct {
	rootDir  string
	readOnly bool
}

var _ Store = (*DiskStore)(nil)

func NewDiskStore(rootDir string) *DiskStore {
	return &DiskStore{
		rootDir: rootDir,
	}
}

// NewReadOnlyDiskStore returns a DiskStore whose WriteFile always fails with ErrReadOnly.
func NewReadOnlyDiskStore(rootDir string) *DiskStore {
	return &DiskStore{
		rootDir:  rootDir,
		readOnly: true,
	}
}

func resolveRelPath(root, subpath string) (string, error) {
	fullPath := filepath.Join(root, subpath)

	// Verify ancestry by calculating the relative path from the root.
	rel, err := filepath.Rel(root, fullPath)
	if err != nil {
		return "", fmt.Errorf("not a relative path: %v", err) // e.g. paths on different volumes
	}

	// A relative path escaping the root will start with ".."
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes root directory", subpath)
	}

	return fullPath, nil
}

func (d *DiskStore) ReadFile(path string) ([]byte, error) {
	fullPath, err := resolveRelPath(d.rootDir, path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

func (d *DiskStore) WriteFile(path string, contents []byte) error {
	if d.readOnly {
		return ErrReadOnly
	}
	fullPath, err := resolveRelPath(d.rootDir, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("could not create parent directory of %q: %w", path, err)
	}
	return os.WriteFile(fullPath, contents, 0644)
}
