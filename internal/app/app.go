// Package app wires configuration into a ready-to-use fitness planner.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"ai-fitness-planner/internal/auth"
	"ai-fitness-planner/internal/cache"
	"ai-fitness-planner/internal/config"
	"ai-fitness-planner/internal/database"
	"ai-fitness-planner/internal/llm"
	"ai-fitness-planner/internal/metrics"
	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/planner"
	"ai-fitness-planner/internal/profile"

	"github.com/rs/zerolog"
)

// App holds the application's dependencies.
type App struct {
	cfg    *config.Config
	logger zerolog.Logger

	db           *database.DB
	backend      cache.Backend
	cache        *cache.Store
	generator    llm.Generator
	metricsStore *metrics.Store
	planner      *planner.Planner
	gate         *auth.StubGate
}

// Option customizes how New assembles the App.
type Option func(*options)

type options struct {
	generator llm.Generator
	cacheOpts []cache.Option
}

// WithGenerator replaces the configured LLM provider.
func WithGenerator(gen llm.Generator) Option {
	return func(o *options) { o.generator = gen }
}

// WithCacheOptions passes extra options to the cache store.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(o *options) { o.cacheOpts = append(o.cacheOpts, opts...) }
}

// New creates and initializes a new App instance from cfg.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		metricsStore: metrics.NewStore(db.SQL),
		generator:    o.generator,
	}

	backend, err := newBackend(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	cacheOpts := append([]cache.Option{cache.WithTTL(cfg.CacheTTL)}, o.cacheOpts...)
	a.backend = backend
	a.cache = cache.NewStore(backend, logger.With().Str("component", "cache").Logger(), cacheOpts...)

	if a.generator == nil {
		a.generator, err = newGenerator(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	plannerOpts := []planner.Option{
		planner.WithRecorder(a.metricsStore),
		planner.WithTemperature(cfg.LLMTemperature),
		planner.WithTimeout(cfg.LLMTimeout),
	}
	if cfg.PlannerSingleFlight {
		plannerOpts = append(plannerOpts, planner.WithSingleFlight())
	}
	a.planner = planner.NewPlanner(a.cache, a.generator, logger.With().Str("component", "planner").Logger(), plannerOpts...)

	secret := cfg.AuthSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			a.Close()
			return nil, err
		}
		logger.Warn().Msg("AUTH_SECRET not set, sessions will not survive a restart")
	}
	a.gate = auth.NewStubGate(secret, cfg.SessionTTL)

	logger.Info().
		Str("provider", cfg.LLMProvider).
		Str("cache_backend", cfg.CacheBackend).
		Dur("cache_ttl", a.cache.TTL()).
		Bool("single_flight", cfg.PlannerSingleFlight).
		Msg("fitness planner ready")

	return a, nil
}

func newBackend(cfg *config.Config, db *database.DB) (cache.Backend, error) {
	switch cfg.CacheBackend {
	case config.CacheMemory:
		return cache.NewMemoryBackend(cfg.CacheMaxEntries)
	case config.CacheRistretto:
		return cache.NewRistrettoBackend(cfg.CacheMaxBytes, cfg.CacheTTL)
	case config.CacheFile:
		return cache.NewFileBackend(cfg.CacheDir)
	case config.CacheSQLite:
		return cache.NewSQLiteBackend(db.SQL), nil
	case config.CacheTiered:
		l1, err := cache.NewMemoryBackend(cfg.CacheMaxEntries)
		if err != nil {
			return nil, err
		}
		return cache.NewTieredBackend(l1, cache.NewSQLiteBackend(db.SQL)), nil
	}
	return nil, fmt.Errorf("unsupported cache backend %q", cfg.CacheBackend)
}

func newGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		client, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		return client, nil
	case config.ProviderGroq:
		return llm.NewGroqClient(cfg), nil
	}
	return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate auth secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GeneratePlan returns a plan for prof. prof must already be validated.
func (a *App) GeneratePlan(ctx context.Context, prof profile.Profile) (*plan.Plan, error) {
	return a.planner.RequestPlan(ctx, prof)
}

// PruneCache removes expired and unreadable cache entries.
func (a *App) PruneCache(ctx context.Context) (int, error) {
	removed, err := a.cache.Prune(ctx)
	if err != nil {
		return removed, fmt.Errorf("failed to prune cache: %w", err)
	}
	return removed, nil
}

// CleanupMetrics removes execution metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, days)
}

// Gate returns the simulated authentication gate.
func (a *App) Gate() *auth.StubGate {
	return a.gate
}

// Metrics returns the execution metrics store.
func (a *App) Metrics() *metrics.Store {
	return a.metricsStore
}

// Config returns the configuration the App was built from.
func (a *App) Config() *config.Config {
	return a.cfg
}

// DataDir is the directory holding the database and cache files.
func (a *App) DataDir() string {
	return filepath.Dir(a.cfg.DatabasePath)
}

// Close releases the generator and the database.
func (a *App) Close() error {
	var errs []error
	if c, ok := a.generator.(llm.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := a.backend.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, a.db.Close())
	return errors.Join(errs...)
}
