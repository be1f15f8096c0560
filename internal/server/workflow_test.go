package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ai-fitness-planner/internal/app"
	"ai-fitness-planner/internal/auth"
	"ai-fitness-planner/internal/config"
	"ai-fitness-planner/internal/llm"
	"ai-fitness-planner/internal/plan"
	"ai-fitness-planner/internal/plan/plantest"
	"ai-fitness-planner/internal/server"

	"github.com/rs/zerolog"
)

type countingGenerator struct {
	calls atomic.Int32
}

func (g *countingGenerator) Generate(_ context.Context, _ llm.Request) (llm.ContentResponse, error) {
	g.calls.Add(1)
	return llm.ContentResponse{Content: plantest.ValidJSON}, nil
}

// Login, request a plan twice and download the report against the real
// application stack with a stubbed model.
func TestFullWorkflow(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		LLMProvider:     config.ProviderGroq,
		LLMTemperature:  0.7,
		LLMTimeout:      time.Second,
		CacheBackend:    config.CacheTiered,
		CacheTTL:        time.Hour,
		CacheMaxEntries: 8,
		DatabasePath:    filepath.Join(dir, "fitness.db"),
		AuthSecret:      "workflow-secret",
		SessionTTL:      time.Hour,
	}
	gen := &countingGenerator{}

	application, err := app.New(context.Background(), cfg, zerolog.Nop(), app.WithGenerator(gen))
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	defer application.Close()

	ts := httptest.NewServer(server.New(application, application.Gate(), application.DataDir(), zerolog.Nop()))
	defer ts.Close()

	post := func(path, body, token string) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("Request to %s failed: %v", path, err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := post("/api/auth/signup", `{"name":"Ana","email":"ana@example.com","password":"secret"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Signup failed with %d", resp.StatusCode)
	}
	var session auth.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatal(err)
	}

	form := `{"age":"25","gender":"Male","weight":"70","height":"175","goal":"Lose Weight","dietaryRestrictions":""}`
	for i := 0; i < 2; i++ {
		resp = post("/api/plans", form, session.Token)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Plan request %d failed with %d", i+1, resp.StatusCode)
		}
		var p plan.Plan
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			t.Fatal(err)
		}
		if p.PlanScore != 88 {
			t.Errorf("Unexpected plan score %d", p.PlanScore)
		}
	}

	resp = post("/api/plans?format=html", form, session.Token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Report request failed with %d", resp.StatusCode)
	}

	if n := gen.calls.Load(); n != 1 {
		t.Errorf("Expected the model to be called once, got %d", n)
	}
}
