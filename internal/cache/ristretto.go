package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// RistrettoBackend keeps entries in a cost-bounded ristretto cache.
// Entries expire on their own after ttl, so it does not implement Sweeper.
type RistrettoBackend struct {
	c   *ristretto.Cache[string, []byte]
	ttl time.Duration
}

// NewRistrettoBackend creates a backend holding at most maxCostBytes of
// serialized plans. Entries are dropped by ristretto once ttl elapses.
func NewRistrettoBackend(maxCostBytes int64, ttl time.Duration) (*RistrettoBackend, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxCostBytes/100*10, 100), // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &RistrettoBackend{c: c, ttl: ttl}, nil
}

func (r *RistrettoBackend) Read(_ context.Context, key string) ([]byte, error) {
	v, ok := r.c.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Write blocks until the entry is visible to subsequent reads.
func (r *RistrettoBackend) Write(_ context.Context, key string, value []byte) error {
	value = append([]byte(nil), value...)
	if !r.c.SetWithTTL(key, value, int64(len(value)), r.ttl) {
		return fmt.Errorf("ristretto rejected entry %q", key)
	}
	r.c.Wait()
	return nil
}

func (r *RistrettoBackend) Delete(_ context.Context, key string) error {
	r.c.Del(key)
	return nil
}

// Close stops ristretto's background goroutines.
func (r *RistrettoBackend) Close() error {
	r.c.Close()
	return nil
}
