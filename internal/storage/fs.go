package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/kyuubi/internal/apperr"
)

// FS stores the document as <root>/<id>.md on the local file system.
type FS struct {
	root string // absolute path to the data directory
	path string // absolute path to the document file
}

// NewFS creates a file store rooted at root, creating the directory when
// missing. id must be a plain file name stem.
func NewFS(root, id string) (*FS, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, path: filepath.Join(abs, id+".md")}, nil
}

// validID rejects IDs that would escape the data directory.
func validID(id string) error {
	if id == "" {
		return fmt.Errorf("storage: document id is required: %w", apperr.ErrInvalidInput)
	}
	if id != filepath.Base(id) || strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("storage: invalid document id %q: %w", id, apperr.ErrInvalidInput)
	}
	return nil
}

// Path returns the absolute path of the document file.
func (f *FS) Path() string {
	return f.path
}

// Load reads the document file.
func (f *FS) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.ErrNotFound
		}
		return "", fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	return string(data), nil
}

// Save atomically writes text: tmp file → fsync → rename.
func (f *FS) Save(_ context.Context, text string) error {
	tmp, err := os.CreateTemp(f.root, ".kyuubi-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(text); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Close is a no-op for the file store.
func (f *FS) Close() error { return nil }
