package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryBackend keeps entries in a bounded in-process LRU.
type MemoryBackend struct {
	entries *lru.Cache[string, []byte]
}

// NewMemoryBackend creates an LRU backend holding at most size entries.
func NewMemoryBackend(size int) (*MemoryBackend, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryBackend{entries: entries}, nil
}

func (m *MemoryBackend) Read(_ context.Context, key string) ([]byte, error) {
	v, ok := m.entries.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Write(_ context.Context, key string, value []byte) error {
	m.entries.Add(key, append([]byte(nil), value...))
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.entries.Remove(key)
	return nil
}

// Sweep implements Sweeper.
func (m *MemoryBackend) Sweep(_ context.Context, remove func([]byte) bool) (int, error) {
	removed := 0
	for _, key := range m.entries.Keys() {
		v, ok := m.entries.Peek(key)
		if ok && remove(v) {
			m.entries.Remove(key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of entries held.
func (m *MemoryBackend) Len() int {
	return m.entries.Len()
}
