package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewDBRunsMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "fitness.db")

	db, err := NewDB(dbPath, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"plan_cache", "execution_metrics"} {
		var name string
		err := db.SQL.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s to exist: %v", table, err)
		}
	}
}

func TestNewDBIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "fitness.db")

	for i := 0; i < 2; i++ {
		db, err := NewDB(dbPath, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewDB run %d failed: %v", i+1, err)
		}
		db.Close()
	}
}

func TestNewDBConnectionSettings(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "fitness.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	if db.SchemaVersion != 2 {
		t.Errorf("Expected schema version 2, got %d", db.SchemaVersion)
	}

	var mode string
	if err := db.SQL.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("Failed to read journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected WAL journal mode, got %q", mode)
	}

	var timeout int
	if err := db.SQL.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("Failed to read busy timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("Expected busy timeout 5000, got %d", timeout)
	}
}

func TestRunMigrationsReportsVersion(t *testing.T) {
	version, err := RunMigrations(filepath.Join(t.TempDir(), "fitness.db"))
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if version != 2 {
		t.Errorf("Expected version 2, got %d", version)
	}
}
