package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS implements Provider with one JSON file per key in a data directory.
// Writes are atomic: tmp file, fsync, rename.
type FS struct {
	root string // absolute path to the data directory
}

// NewFS creates a file provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("kv: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("kv: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("kv: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute data directory, used by the change watcher.
func (f *FS) Root() string {
	return f.root
}

// keyPath maps a key to a file path under root, rejecting anything that
// would escape the data directory.
func (f *FS) keyPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("kv: empty key")
	}
	cleaned := filepath.Clean(key)
	if filepath.IsAbs(cleaned) || strings.Contains(cleaned, "..") || cleaned != filepath.Base(cleaned) {
		return "", fmt.Errorf("kv: invalid key: %s", key)
	}
	return filepath.Join(f.root, cleaned+".json"), nil
}

// Get reads the file for key.
func (f *FS) Get(_ context.Context, key string) ([]byte, error) {
	path, err := f.keyPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoKey
		}
		return nil, fmt.Errorf("kv: read %s: %w", key, err)
	}
	return data, nil
}

// Set atomically writes value: tmp file, fsync, rename.
func (f *FS) Set(_ context.Context, key string, value []byte) error {
	path, err := f.keyPath(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("kv: create temp: %w", err)
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

	if _, err := tmp.Write(value); err != nil {
		return fmt.Errorf("kv: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("kv: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kv: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("kv: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the file for key, ignoring absence.
func (f *FS) Delete(_ context.Context, key string) error {
	path, err := f.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("kv: delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (f *FS) Close() error { return nil }
