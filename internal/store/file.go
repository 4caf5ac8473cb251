package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the id set as a JSON array of strings in a single file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the id set. A missing or empty file yields an empty set; a file
// that is not a JSON array of strings yields ErrCorruptState.
func (f *FileStore) Load(ctx context.Context) (IDSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return IDSet{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrStore, f.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return IDSet{}, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrCorruptState, f.path, err)
	}

	return NewIDSet(ids...), nil
}

// Save writes ids to a temp file in the same directory, syncs it, and
// renames it over the previous state. A cancelled context does not stop
// the write.
func (f *FileStore) Save(_ context.Context, ids IDSet) error {
	data, err := json.MarshalIndent(ids.Sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding ids: %w", ErrStore, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrStore, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrStore, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: writing temp file: %w", ErrStore, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: syncing temp file: %w", ErrStore, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %w", ErrStore, err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", ErrStore, f.path, err)
	}

	return nil
}

// Ping checks that the state directory exists or can be created.
func (f *FileStore) Ping(_ context.Context) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: state directory %s: %w", ErrStore, dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: state directory %s: %w", ErrStore, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrStore, dir)
	}
	return nil
}

var _ IDStore = (*FileStore)(nil)
