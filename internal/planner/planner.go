package planner

import (
	"context"
	"errors"
	"time"

	"ai-fitness-planner/internal/cache"
	"ai-fitness-planner/internal/llm"
	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/profile"
	"ai-fitness-planner/internal/shared"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	// AgentName identifies plan generations in the metrics store.
	AgentName = "PlanGenerator"

	DefaultTemperature float32 = 0.7
	DefaultTimeout             = 60 * time.Second
)

// FailureMessage is the only text a caller ever sees when generation fails.
const FailureMessage = "Failed to generate fitness plan. The AI model may be overloaded. Please try again later."

// ErrGenerationFailed matches every error returned by RequestPlan.
var ErrGenerationFailed = errors.New("generation failed")

// GenerationError is the single failure kind of RequestPlan. The underlying
// cause is logged, never exposed.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrGenerationFailed) match.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// PlanCache is the part of cache.Store the planner needs.
type PlanCache interface {
	Get(ctx context.Context, key string) (*plan.Plan, bool)
	Put(ctx context.Context, key string, p *plan.Plan)
}

// Recorder persists generation metadata.
type Recorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// Planner turns a profile into a cached, schema-valid plan.
type Planner struct {
	cache       PlanCache
	generator   llm.Generator
	logger      zerolog.Logger
	recorder    Recorder
	temperature float32
	timeout     time.Duration
	inflight    *singleflight.Group
}

// Option configures a Planner.
type Option func(*Planner)

// WithRecorder records one metric per generation attempt.
func WithRecorder(r Recorder) Option {
	return func(p *Planner) { p.recorder = r }
}

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float32) Option {
	return func(p *Planner) { p.temperature = t }
}

// WithTimeout bounds each generator call.
func WithTimeout(d time.Duration) Option {
	return func(p *Planner) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithSingleFlight collapses concurrent misses for the same profile into one
// generator call.
func WithSingleFlight() Option {
	return func(p *Planner) { p.inflight = &singleflight.Group{} }
}

// NewPlanner creates a new Planner instance.
func NewPlanner(c PlanCache, gen llm.Generator, logger zerolog.Logger, opts ...Option) *Planner {
	p := &Planner{
		cache:       c,
		generator:   gen,
		logger:      logger,
		temperature: DefaultTemperature,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequestPlan returns a fresh cached plan for prof, or asks the generator for
// one exactly once. Any failure is a *GenerationError and leaves the cache
// untouched.
//
// The generator call is detached from ctx and bounded only by the planner's
// timeout. A caller whose ctx ends first gets a GenerationError right away
// while the call runs to completion and fills the cache for the next request.
func (p *Planner) RequestPlan(ctx context.Context, prof profile.Profile) (*plan.Plan, error) {
	key := cache.DeriveKey(prof)

	if cached, ok := p.cache.Get(ctx, key); ok {
		p.logger.Debug().Str("key", key).Msg("returning cached plan")
		return cached, nil
	}

	detached := context.WithoutCancel(ctx)
	var results <-chan singleflight.Result
	if p.inflight != nil {
		results = p.inflight.DoChan(key, func() (any, error) {
			return p.generate(detached, key, prof)
		})
	} else {
		ch := make(chan singleflight.Result, 1)
		go func() {
			v, err := p.generate(detached, key, prof)
			ch <- singleflight.Result{Val: v, Err: err}
		}()
		results = ch
	}

	select {
	case res := <-results:
		if res.Shared {
			p.logger.Debug().Str("key", key).Msg("joined in-flight generation")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*plan.Plan), nil
	case <-ctx.Done():
		p.logger.Warn().Err(ctx.Err()).Str("key", key).Msg("caller left before the plan was ready, generation continues")
		return nil, &GenerationError{Message: FailureMessage}
	}
}

func (p *Planner) generate(ctx context.Context, key string, prof profile.Profile) (*plan.Plan, error) {
	prompt, err := BuildPrompt(prof)
	if err != nil {
		return nil, p.fail(key, err)
	}

	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.generator.Generate(genCtx, llm.Request{
		Prompt:      prompt,
		Schema:      plan.Schema,
		Temperature: p.temperature,
	})
	meta := shared.AgentMeta{
		AgentName: AgentName,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
		Outcome:   shared.OutcomeFailure,
	}
	if err != nil {
		p.record(ctx, meta)
		return nil, p.fail(key, err)
	}

	result, err := plan.Parse([]byte(resp.Content))
	if err != nil {
		p.record(ctx, meta)
		return nil, p.fail(key, err)
	}

	p.cache.Put(ctx, key, result)

	meta.Outcome = shared.OutcomeSuccess
	p.record(ctx, meta)

	p.logger.Info().
		Str("model", resp.Usage.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("latency", meta.Latency).
		Int("plan_score", result.PlanScore).
		Msg("generated fitness plan")

	return result, nil
}

func (p *Planner) fail(key string, cause error) error {
	p.logger.Error().Err(cause).Str("key", key).Msg("failed to generate fitness plan")
	return &GenerationError{Message: FailureMessage}
}

// record stores meta without letting a metrics failure affect the caller.
// ctx is already detached from the caller.
func (p *Planner) record(ctx context.Context, meta shared.AgentMeta) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordMeta(ctx, meta); err != nil {
		p.logger.Warn().Err(err).Str("agent", meta.AgentName).Msg("failed to record metrics")
	}
}
