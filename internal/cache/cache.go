// Package cache stores generated plans keyed by the profile that produced
// them. Entries expire after a TTL; anything unreadable is treated as a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/profile"

	"github.com/rs/zerolog"
)

// DefaultTTL is how long a cached plan stays fresh.
const DefaultTTL = time.Hour

// KeyPrefix starts every cache key.
const KeyPrefix = "fitnessPlan_"

// ErrNotFound is returned by a Backend when the key has no value.
var ErrNotFound = errors.New("cache entry not found")

// Backend persists raw entry bytes. Implementations must be safe for
// concurrent use; concurrent writes to one key are last-write-wins.
type Backend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Sweeper is implemented by backends that can enumerate their entries.
// Sweep removes every entry for which remove returns true and reports how
// many were removed.
type Sweeper interface {
	Sweep(ctx context.Context, remove func(value []byte) bool) (int, error)
}

// Entry is the persisted form of a cached plan.
type Entry struct {
	Plan      json.RawMessage `json:"plan"`
	CreatedAt int64           `json:"createdAt"`
}

// Store is the plan cache used by the planner.
type Store struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore wraps backend with expiry and validation.
func NewStore(backend Backend, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the freshness window.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the cached plan for key when it exists and is younger than the
// TTL. Backend errors, corrupt entries and stale entries all report a miss;
// the last two are also deleted.
func (s *Store) Get(ctx context.Context, key string) (*plan.Plan, bool) {
	data, err := s.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read cache entry, treating as miss")
		}
		return nil, false
	}

	p, reason := s.decode(data)
	if p == nil {
		s.logger.Debug().Str("key", key).Str("reason", reason).Msg("discarding cache entry")
		s.purge(ctx, key)
		return nil, false
	}
	return p, true
}

// Put stores p under key with the current time. Failures are logged and
// never returned.
func (s *Store) Put(ctx context.Context, key string, p *plan.Plan) {
	if p == nil {
		return
	}

	raw, err := json.Marshal(p)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to encode plan for cache")
		return
	}
	data, err := json.Marshal(Entry{Plan: raw, CreatedAt: s.now().UnixMilli()})
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}

	if err := s.backend.Write(ctx, key, data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to write cache entry")
	}
}

// Prune deletes stale and corrupt entries from backends that support it.
func (s *Store) Prune(ctx context.Context) (int, error) {
	sweeper, ok := s.backend.(Sweeper)
	if !ok {
		return 0, nil
	}
	n, err := sweeper.Sweep(ctx, func(value []byte) bool {
		p, _ := s.decode(value)
		return p == nil
	})
	if err != nil {
		return n, fmt.Errorf("failed to prune cache: %w", err)
	}
	return n, nil
}

// decode returns the plan in data, or nil with the reason it is unusable.
func (s *Store) decode(data []byte) (*plan.Plan, string) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, "corrupt entry: " + err.Error()
	}
	if s.expired(e.CreatedAt) {
		return nil, "expired"
	}
	p, err := plan.Parse(e.Plan)
	if err != nil {
		return nil, "invalid plan: " + err.Error()
	}
	return p, ""
}

func (s *Store) expired(createdAt int64) bool {
	return s.now().UnixMilli()-createdAt >= s.ttl.Milliseconds()
}

func (s *Store) purge(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Debug().Err(err).Str("key", key).Msg("failed to purge cache entry")
	}
}

// keyFields fixes the order of fields in a cache key.
type keyFields struct {
	Age                 int     `json:"age"`
	Gender              string  `json:"gender"`
	Weight              float64 `json:"weight"`
	Height              float64 `json:"height"`
	Goal                string  `json:"goal"`
	DietaryRestrictions string  `json:"dietaryRestrictions"`
}

// DeriveKey returns the cache key for p. It depends only on field values, so
// equal profiles share a key and any differing field changes it. Numbers are
// compared by value (70 and 70.0 match) and restrictions ignore surrounding
// whitespace.
func DeriveKey(p profile.Profile) string {
	b, err := json.Marshal(keyFields{
		Age:                 p.Age,
		Gender:              string(p.Gender),
		Weight:              p.WeightKg,
		Height:              p.HeightCm,
		Goal:                string(p.Goal),
		DietaryRestrictions: strings.TrimSpace(p.DietaryRestrictions),
	})
	if err != nil {
		// Only NaN or Inf measurements get here.
		return fmt.Sprintf("%s%d|%s|%v|%v|%s|%s", KeyPrefix, p.Age, p.Gender, p.WeightKg, p.HeightCm, p.Goal,
			strings.TrimSpace(p.DietaryRestrictions))
	}
	return KeyPrefix + string(b)
}
