package cache

import (
	"context"
	"errors"
	"os"

	"ai-fitness-planner/internal/storage"
)

// FileBackend stores one JSON file per key under a directory.
type FileBackend struct {
	files *storage.FileStore
}

// NewFileBackend creates the directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	files, err := storage.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &FileBackend{files: files}, nil
}

func (f *FileBackend) Read(_ context.Context, key string) ([]byte, error) {
	data, err := f.files.Load(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (f *FileBackend) Write(_ context.Context, key string, value []byte) error {
	return f.files.Save(key, value)
}

func (f *FileBackend) Delete(_ context.Context, key string) error {
	return f.files.Remove(key)
}

// Sweep implements Sweeper.
func (f *FileBackend) Sweep(_ context.Context, remove func([]byte) bool) (int, error) {
	return f.files.RemoveMatching(remove)
}
