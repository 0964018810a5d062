// File: sqlite.go
// Title: SQLite History Store
// Description: Store implementation on SQLite with WAL journaling.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial SQLite store
// - 2026-10-16 v0.1.0: Bind the Since cutoff in UTC

package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	ckconfig "github.com/msto63/cstkit/pkg/core/config"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and creates if needed) the database named by the history section
func Open(cfg ckconfig.HistoryConfig) (*SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, storageError(err, "failed to create history directory")
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, storageError(err, "failed to open history database")
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, storageError(err, "failed to initialize history schema")
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS evaluations (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		input TEXT NOT NULL,
		entry_rule TEXT NOT NULL,
		value REAL,
		error TEXT,
		error_code TEXT,
		duration_ms REAL NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_evaluations_run_id ON evaluations(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores an entry
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(entry)

	var value interface{}
	if !entry.Failed() {
		value = entry.Value
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, run_id, input, entry_rule, value, error, error_code, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.RunID, entry.Input, entry.EntryRule, value,
		nullString(entry.Error), nullString(entry.ErrorCode), entry.DurationMs, entry.CreatedAt)
	if err != nil {
		return storageError(err, "failed to insert evaluation")
	}
	return nil
}

// Recent returns the newest entries first
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	return s.Query(ctx, Filter{Limit: limit})
}

// Query retrieves entries matching filter, newest first
func (s *SQLiteStore) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, run_id, input, entry_rule, value, error, error_code, duration_ms, created_at
		FROM evaluations WHERE 1=1`
	var args []interface{}

	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}
	if filter.OnlyFailures {
		query += " AND error IS NOT NULL"
	}
	if filter.Contains != "" {
		query += " AND instr(input, ?) > 0"
		args = append(args, filter.Contains)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError(err, "failed to query evaluations")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			entry     Entry
			value     sql.NullFloat64
			errText   sql.NullString
			errorCode sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Input, &entry.EntryRule, &value,
			&errText, &errorCode, &entry.DurationMs, &entry.CreatedAt); err != nil {
			return nil, storageError(err, "failed to scan evaluation")
		}
		entry.Value = value.Float64
		entry.Error = errText.String
		entry.ErrorCode = errorCode.String
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err, "failed to read evaluations")
	}
	return entries, nil
}

// Count returns the number of stored entries
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&n); err != nil {
		return 0, storageError(err, "failed to count evaluations")
	}
	return n, nil
}

// Stats returns totals and the time range covered
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		stats          Stats
		failures       sql.NullInt64
		oldest, newest sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END), MIN(created_at), MAX(created_at)
		FROM evaluations
	`).Scan(&stats.Total, &failures, &oldest, &newest)
	if err != nil {
		return Stats{}, storageError(err, "failed to compute history stats")
	}
	stats.Failures = failures.Int64
	stats.Oldest = parseTime(oldest)
	stats.Newest = parseTime(newest)
	return stats, nil
}

// Prune removes entries older than the given age
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, storageError(err, "failed to prune evaluations")
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseTime reads aggregate timestamps, which go-sqlite3 returns as text
func parseTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	} {
		if t, err := time.Parse(layout, s.String); err == nil {
			return t
		}
	}
	return time.Time{}
}
