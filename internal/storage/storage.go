package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileExt = ".json"

// FileStore provides file-based storage of JSON documents addressed by an
// arbitrary string key. Keys are hashed into file names so any key is safe
// to use.
type FileStore struct {
	basePath string
}

// NewFileStore creates a new FileStore and ensures the base directory exists.
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.basePath, hex.EncodeToString(sum[:])+fileExt)
}

// Save writes data for key. The write goes through a temporary file and a
// rename so readers never see a partial document.
func (s *FileStore) Save(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

// Load reads the document stored for key. A missing key yields an error
// matching os.ErrNotExist.
func (s *FileStore) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Exists checks if a document is stored for key.
func (s *FileStore) Exists(key string) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Remove deletes the document for key. Removing a missing key is not an error.
func (s *FileStore) Remove(key string) error {
	if err := os.Remove(s.Path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// RemoveMatching removes every stored document for which match returns true
// and returns how many files were removed. Unreadable files are skipped.
func (s *FileStore) RemoveMatching(match func(data []byte) bool) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to list storage directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		path := filepath.Join(s.basePath, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !match(data) {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove stale file %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}
