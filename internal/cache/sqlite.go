package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteBackend stores entries in the plan_cache table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend uses a database that already has the plan_cache migration applied.
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Read(ctx context.Context, key string) ([]byte, error) {
	var entry []byte
	err := b.db.QueryRowContext(ctx, `SELECT entry FROM plan_cache WHERE cache_key = ?`, key).Scan(&entry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plan_cache: %w", err)
	}
	return entry, nil
}

func (b *SQLiteBackend) Write(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO plan_cache (cache_key, entry, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET entry = excluded.entry, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write plan_cache: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM plan_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete from plan_cache: %w", err)
	}
	return nil
}

// Sweep implements Sweeper. Keys are collected first so the delete does not
// run while the read cursor is open on the single connection.
func (b *SQLiteBackend) Sweep(ctx context.Context, remove func([]byte) bool) (int, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT cache_key, entry FROM plan_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to scan plan_cache: %w", err)
	}

	var stale []string
	for rows.Next() {
		var (
			key   string
			entry []byte
		)
		if err := rows.Scan(&key, &entry); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan plan_cache row: %w", err)
		}
		if remove(entry) {
			stale = append(stale, key)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("failed to scan plan_cache: %w", err)
	}
	rows.Close()

	for i, key := range stale {
		if err := b.Delete(ctx, key); err != nil {
			return i, err
		}
	}
	return len(stale), nil
}
