package planner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ai-fitness-planner/internal/cache"
	"ai-fitness-planner/internal/llm"
	"ai-fitness-planner/internal/plan/plantest"
	"ai-fitness-planner/internal/profile"
	"ai-fitness-planner/internal/shared"

	"github.com/rs/zerolog"
)

// MockGenerator replays scripted responses and counts calls.
type MockGenerator struct {
	mu        sync.Mutex
	responses []mockResponse
	calls     int
	requests  []llm.Request
	block     bool
}

type mockResponse struct {
	content string
	err     error
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	idx := m.calls - 1
	block := m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return llm.ContentResponse{}, ctx.Err()
	}

	if idx >= len(m.responses) {
		return llm.ContentResponse{}, errors.New("unexpected call")
	}
	r := m.responses[idx]
	return llm.ContentResponse{
		Content: r.content,
		Usage:   shared.TokenUsage{PromptTokens: 10, CompletionTokens: 20, Model: "mock"},
	}, r.err
}

func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockRecorder captures recorded metrics.
type MockRecorder struct {
	mu    sync.Mutex
	metas []shared.AgentMeta
	err   error
}

func (m *MockRecorder) RecordMeta(_ context.Context, meta shared.AgentMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metas = append(m.metas, meta)
	return m.err
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testProfile() profile.Profile {
	return profile.Profile{
		Age:      25,
		Gender:   profile.GenderMale,
		WeightKg: 70,
		HeightCm: 175,
		Goal:     profile.GoalLoseWeight,
	}
}

func newTestPlanner(t *testing.T, gen llm.Generator, opts ...Option) (*Planner, *cache.Store, *clock) {
	t.Helper()
	backend, err := cache.NewMemoryBackend(16)
	if err != nil {
		t.Fatal(err)
	}
	clk := &clock{now: time.UnixMilli(1_700_000_000_000)}
	store := cache.NewStore(backend, zerolog.Nop(), cache.WithClock(clk.Now))
	return NewPlanner(store, gen, zerolog.Nop(), opts...), store, clk
}

func TestRequestPlanCacheHitShortCircuits(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{responses: []mockResponse{
		{content: plantest.ValidJSON},
		{err: errors.New("service unavailable")},
	}}
	p, _, _ := newTestPlanner(t, gen)

	first, err := p.RequestPlan(ctx, testProfile())
	if err != nil {
		t.Fatalf("First request failed: %v", err)
	}
	second, err := p.RequestPlan(ctx, testProfile())
	if err != nil {
		t.Fatalf("Second request should be served from cache: %v", err)
	}

	if gen.Calls() != 1 {
		t.Errorf("Expected generator to be called once, got %d", gen.Calls())
	}
	if first.MotivationalMessage != second.MotivationalMessage || first.DietPlan != second.DietPlan {
		t.Error("Expected the cached plan to equal the generated one")
	}
}

func TestRequestPlanExpiredEntryRegenerates(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{responses: []mockResponse{
		{content: plantest.ValidJSON},
		{content: plantest.With("planScore", "42")},
	}}
	p, _, clk := newTestPlanner(t, gen)

	if _, err := p.RequestPlan(ctx, testProfile()); err != nil {
		t.Fatalf("First request failed: %v", err)
	}

	clk.Advance(cache.DefaultTTL + time.Millisecond)

	got, err := p.RequestPlan(ctx, testProfile())
	if err != nil {
		t.Fatalf("Second request failed: %v", err)
	}
	if gen.Calls() != 2 {
		t.Errorf("Expected a fresh generation after expiry, got %d calls", gen.Calls())
	}
	if got.PlanScore != 42 {
		t.Errorf("Expected the regenerated plan, got score %d", got.PlanScore)
	}
}

func TestRequestPlanFailures(t *testing.T) {
	tests := []struct {
		name     string
		response mockResponse
		block    bool
	}{
		{name: "transport error", response: mockResponse{err: errors.New("dial tcp: connection refused")}},
		{name: "non-JSON response", response: mockResponse{content: "not json"}},
		{name: "missing planScore", response: mockResponse{content: plantest.Without("planScore")}},
		{name: "markdown fenced", response: mockResponse{content: "```json\n" + plantest.ValidJSON + "\n```"}},
		{name: "prose after JSON", response: mockResponse{content: plantest.ValidJSON + "\nHope this helps!"}},
		{name: "timeout", block: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			gen := &MockGenerator{responses: []mockResponse{tt.response}, block: tt.block}
			rec := &MockRecorder{}
			p, store, _ := newTestPlanner(t, gen, WithTimeout(20*time.Millisecond), WithRecorder(rec))

			got, err := p.RequestPlan(ctx, testProfile())
			if got != nil {
				t.Error("Expected no plan on failure")
			}
			if !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("Expected ErrGenerationFailed, got %v", err)
			}
			var genErr *GenerationError
			if !errors.As(err, &genErr) || genErr.Message != FailureMessage {
				t.Errorf("Expected the fixed failure message, got %v", err)
			}
			if err.Error() != FailureMessage {
				t.Errorf("Raw cause leaked into error: %q", err.Error())
			}

			if _, ok := store.Get(ctx, cache.DeriveKey(testProfile())); ok {
				t.Error("Cache must stay empty after a failure")
			}
			if gen.Calls() != 1 {
				t.Errorf("Expected exactly one generator call, got %d", gen.Calls())
			}
			if len(rec.metas) != 1 || rec.metas[0].Outcome != shared.OutcomeFailure {
				t.Errorf("Expected one failure metric, got %+v", rec.metas)
			}
		})
	}
}

func TestRequestPlanFailureThenRetrySucceeds(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{responses: []mockResponse{
		{content: "not json"},
		{content: plantest.ValidJSON},
	}}
	p, _, _ := newTestPlanner(t, gen)

	if _, err := p.RequestPlan(ctx, testProfile()); err == nil {
		t.Fatal("Expected first request to fail")
	}
	if _, err := p.RequestPlan(ctx, testProfile()); err != nil {
		t.Fatalf("Expected resubmission to succeed: %v", err)
	}
	if gen.Calls() != 2 {
		t.Errorf("Expected 2 calls, got %d", gen.Calls())
	}
}

func TestRequestPlanRequest(t *testing.T) {
	gen := &MockGenerator{responses: []mockResponse{{content: plantest.ValidJSON}}}
	rec := &MockRecorder{err: errors.New("database is locked")}
	p, _, _ := newTestPlanner(t, gen, WithTemperature(0.5), WithRecorder(rec))

	prof := testProfile()
	prof.DietaryRestrictions = "lactose intolerant"
	if _, err := p.RequestPlan(context.Background(), prof); err != nil {
		t.Fatalf("A metrics failure must not fail the request: %v", err)
	}

	req := gen.requests[0]
	if req.Temperature != 0.5 {
		t.Errorf("Expected temperature 0.5, got %v", req.Temperature)
	}
	if req.Schema == nil || req.Schema.Property("dietPlan") == nil {
		t.Error("Expected the plan schema to be sent")
	}
	if len(rec.metas) != 1 || rec.metas[0].Outcome != shared.OutcomeSuccess || rec.metas[0].AgentName != AgentName {
		t.Errorf("Expected one success metric, got %+v", rec.metas)
	}
	if rec.metas[0].Usage.PromptTokens != 10 {
		t.Errorf("Expected usage to be recorded, got %+v", rec.metas[0].Usage)
	}
}

// gatedGenerator blocks in Generate until release is closed or its context
// ends. entered receives one value per call.
type gatedGenerator struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedGenerator() *gatedGenerator {
	return &gatedGenerator{entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func (g *gatedGenerator) Generate(ctx context.Context, _ llm.Request) (llm.ContentResponse, error) {
	g.calls.Add(1)
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return llm.ContentResponse{Content: plantest.ValidJSON}, nil
	case <-ctx.Done():
		return llm.ContentResponse{}, ctx.Err()
	}
}

// doneRecorder signals every recorded generation.
type doneRecorder struct {
	done chan shared.AgentMeta
}

func (r *doneRecorder) RecordMeta(_ context.Context, meta shared.AgentMeta) error {
	r.done <- meta
	return nil
}

func TestSingleFlightCollapsesConcurrentMisses(t *testing.T) {
	gen := newGatedGenerator()
	p, _, _ := newTestPlanner(t, gen, WithSingleFlight())

	const callers = 5
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.RequestPlan(context.Background(), testProfile())
			errs <- err
		}()
	}

	// Callers arriving after this point either join the blocked flight or,
	// once it finishes, hit the cache.
	<-gen.entered
	close(gen.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if gen.calls.Load() != 1 {
		t.Errorf("Expected 1 generator call, got %d", gen.calls.Load())
	}
}

func TestCallerCancellationDoesNotAbortGeneration(t *testing.T) {
	for _, singleFlight := range []bool{false, true} {
		name := "direct"
		if singleFlight {
			name = "single-flight"
		}
		t.Run(name, func(t *testing.T) {
			gen := newGatedGenerator()
			rec := &doneRecorder{done: make(chan shared.AgentMeta, 1)}
			opts := []Option{WithRecorder(rec)}
			if singleFlight {
				opts = append(opts, WithSingleFlight())
			}
			p, store, _ := newTestPlanner(t, gen, opts...)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() {
				_, err := p.RequestPlan(ctx, testProfile())
				errCh <- err
			}()

			<-gen.entered
			cancel()
			if err := <-errCh; !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("Expected the cancelled caller to get ErrGenerationFailed, got %v", err)
			}

			close(gen.release)
			if meta := <-rec.done; meta.Outcome != shared.OutcomeSuccess {
				t.Fatalf("Expected the generation to finish successfully, got %s", meta.Outcome)
			}
			if _, ok := store.Get(context.Background(), cache.DeriveKey(testProfile())); !ok {
				t.Error("Expected the finished plan to be cached")
			}
			if _, err := p.RequestPlan(context.Background(), testProfile()); err != nil {
				t.Errorf("Expected the resubmission to be served from cache: %v", err)
			}
			if gen.calls.Load() != 1 {
				t.Errorf("Expected 1 generator call, got %d", gen.calls.Load())
			}
		})
	}
}

func TestSingleFlightSurvivesFirstCallerLeaving(t *testing.T) {
	gen := newGatedGenerator()
	p, _, _ := newTestPlanner(t, gen, WithSingleFlight())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := p.RequestPlan(ctx, testProfile())
		firstErr <- err
	}()
	<-gen.entered

	cancel()
	if err := <-firstErr; !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("Expected the first caller to give up, got %v", err)
	}

	secondErr := make(chan error, 1)
	go func() {
		_, err := p.RequestPlan(context.Background(), testProfile())
		secondErr <- err
	}()
	close(gen.release)

	if err := <-secondErr; err != nil {
		t.Fatalf("Expected the second caller to get the shared plan, got %v", err)
	}
	if gen.calls.Load() != 1 {
		t.Errorf("Expected 1 generator call, got %d", gen.calls.Load())
	}
}

func TestBuildPrompt(t *testing.T) {
	prof := testProfile()
	prof.DietaryRestrictions = "vegetarian"

	prompt, err := BuildPrompt(prof)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	expected := []string{
		"- Age: 25",
		"- Gender: Male",
		"- Weight: 70 kg",
		"- Height: 175 cm",
		"- BMI: 22.9 (Healthy Weight)",
		"- Primary Goal: Lose Weight",
		"- Dietary Restrictions: vegetarian",
		"single JSON object and nothing else",
		"- planScore (integer, required, between 0 and 100)",
		"- sunday (object, required)",
	}
	for _, want := range expected {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}

	prof.DietaryRestrictions = ""
	prompt, _ = BuildPrompt(prof)
	if !strings.Contains(prompt, "- Dietary Restrictions: None") {
		t.Error("Expected empty restrictions to read as None")
	}
}
