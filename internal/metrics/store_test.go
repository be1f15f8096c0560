package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ai-fitness-planner/internal/database"
	"ai-fitness-planner/internal/shared"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStoreRecordAndDailyUsage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.RecordMeta(ctx, shared.AgentMeta{
		AgentName: "PlanGenerator",
		Usage:     shared.TokenUsage{PromptTokens: 100, CompletionTokens: 900, Model: "gemini-2.5-flash"},
		Latency:   1500 * time.Millisecond,
		Outcome:   shared.OutcomeSuccess,
	})
	if err != nil {
		t.Fatalf("RecordMeta failed: %v", err)
	}
	err = store.RecordMeta(ctx, shared.AgentMeta{
		AgentName: "PlanGenerator",
		Usage:     shared.TokenUsage{PromptTokens: 50, Model: "gemini-2.5-flash"},
		Outcome:   shared.OutcomeFailure,
	})
	if err != nil {
		t.Fatalf("RecordMeta failed: %v", err)
	}

	usage, err := store.GetDailyUsage(ctx, 7)
	if err != nil {
		t.Fatalf("GetDailyUsage failed: %v", err)
	}
	if len(usage) != 1 {
		t.Fatalf("Expected 1 day of usage, got %d", len(usage))
	}

	day := usage[0]
	if day.Date != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("Expected today's date, got %s", day.Date)
	}
	if day.TotalPrompt != 150 || day.TotalCompletion != 900 {
		t.Errorf("Unexpected token totals: %+v", day)
	}
	if day.TotalExecution != 2 || day.Failures != 1 {
		t.Errorf("Expected 2 executions with 1 failure, got %+v", day)
	}
}

func TestStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	old := ExecutionMetric{AgentName: "PlanGenerator", Timestamp: time.Now().AddDate(0, 0, -40)}
	recent := ExecutionMetric{AgentName: "PlanGenerator", Timestamp: time.Now().AddDate(0, 0, -1)}
	for _, m := range []ExecutionMetric{old, recent} {
		if err := store.Record(ctx, m); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	removed, err := store.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed record, got %d", removed)
	}

	usage, err := store.GetDailyUsage(ctx, 90)
	if err != nil {
		t.Fatalf("GetDailyUsage failed: %v", err)
	}
	if len(usage) != 1 {
		t.Errorf("Expected only the recent record to remain, got %+v", usage)
	}
}

func TestGetSysHealth(t *testing.T) {
	health := GetSysHealth(t.TempDir())
	if health.Goroutines == 0 {
		t.Error("Expected at least one goroutine")
	}
	if health.DataDiskSize != "0 B" {
		t.Errorf("Expected empty dir to report 0 B, got %s", health.DataDiskSize)
	}
	if health.DiskUsedPercent < 0 || health.DiskUsedPercent > 100 {
		t.Errorf("Disk usage out of range: %v", health.DiskUsedPercent)
	}
}

func TestDiskRootFallsBackToExistingParent(t *testing.T) {
	dir := t.TempDir()
	if got := diskRoot(filepath.Join(dir, "missing", "data")); got != dir {
		t.Errorf("Expected %s, got %s", dir, got)
	}
}
