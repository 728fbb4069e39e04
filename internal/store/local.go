package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore persists documents as files in a single directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed and returns a store over it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (l *LocalStore) path(name string) string {
	// Document names are <channelId>.json; reject anything that would
	// escape the storage directory.
	return filepath.Join(l.dir, filepath.Base(name))
}

func (l *LocalStore) Find(_ context.Context, name string) (*FileRef, error) {
	path := l.path(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("find %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("find %s: %w", name, err)
	}
	return &FileRef{ID: path, Name: name}, nil
}

func (l *LocalStore) Read(_ context.Context, ref *FileRef) ([]byte, error) {
	content, err := os.ReadFile(ref.ID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", ref.Name, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", ref.Name, err)
	}
	return content, nil
}

func (l *LocalStore) Write(_ context.Context, name string, content []byte) (*FileRef, error) {
	path := l.path(name)

	// Write via a temp file and rename so a crash mid-write never leaves a
	// truncated document behind.
	tmp, err := os.CreateTemp(l.dir, filepath.Base(name)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	return &FileRef{ID: path, Name: name}, nil
}
