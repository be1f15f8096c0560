package cache

import (
	"context"
	"errors"
)

// TieredBackend combines a fast L1 with a durable L2.
// Read checks L1 first, then L2 (backfilling L1 on an L2 hit).
// Write and Delete operate on both levels.
type TieredBackend struct {
	l1 Backend
	l2 Backend
}

// NewTieredBackend creates a tiered backend with the given levels.
func NewTieredBackend(l1, l2 Backend) *TieredBackend {
	return &TieredBackend{l1: l1, l2: l2}
}

// Read checks L1, then L2. An L1 failure falls through to L2.
func (t *TieredBackend) Read(ctx context.Context, key string) ([]byte, error) {
	if val, err := t.l1.Read(ctx, key); err == nil {
		return val, nil
	}

	val, err := t.l2.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	// Backfill L1
	_ = t.l1.Write(ctx, key, val)
	return val, nil
}

// Write writes to L2 first so L1 never holds an entry L2 rejected.
func (t *TieredBackend) Write(ctx context.Context, key string, value []byte) error {
	if err := t.l2.Write(ctx, key, value); err != nil {
		return err
	}
	return t.l1.Write(ctx, key, value)
}

// Delete removes from both L1 and L2.
func (t *TieredBackend) Delete(ctx context.Context, key string) error {
	return errors.Join(t.l1.Delete(ctx, key), t.l2.Delete(ctx, key))
}

// Sweep implements Sweeper, reporting the number of entries removed from L2.
func (t *TieredBackend) Sweep(ctx context.Context, remove func([]byte) bool) (int, error) {
	if s, ok := t.l1.(Sweeper); ok {
		if _, err := s.Sweep(ctx, remove); err != nil {
			return 0, err
		}
	}
	if s, ok := t.l2.(Sweeper); ok {
		return s.Sweep(ctx, remove)
	}
	return 0, nil
}
