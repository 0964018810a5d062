// File: store.go
// Title: Evaluation History Store
// Description: Persists pipeline runs (input, entry rule, value or error) so
//              that CLI, REPL and RPC service share one evaluation history.
//              SQLite in WAL mode for disk, a slice-backed store for tests and
//              ephemeral sessions.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial history store

package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/cstkit/internal/pipeline"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

// Entry is one recorded run
type Entry struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Input      string    `json:"input"`
	EntryRule  string    `json:"entry_rule"`
	Value      float64   `json:"value"`
	Error      string    `json:"error,omitempty"`
	ErrorCode  string    `json:"error_code,omitempty"`
	DurationMs float64   `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Failed reports whether the run ended with an error
func (e *Entry) Failed() bool {
	return e.Error != ""
}

// FromResult builds an entry for a finished run. err is the run's error,
// if any; the result's value is ignored for failed runs.
func FromResult(res *pipeline.Result, err error) *Entry {
	entry := &Entry{
		ID:         uuid.NewString(),
		RunID:      res.RunID,
		Input:      res.Input,
		EntryRule:  res.EntryRule,
		DurationMs: float64(res.Timings.Total().Nanoseconds()) / 1e6,
		CreatedAt:  time.Now().UTC(),
	}
	if err != nil {
		entry.Error = err.Error()
		entry.ErrorCode = string(ckerror.GetCode(err))
		return entry
	}
	entry.Value = res.Value
	return entry
}

// Filter selects entries; zero values match everything
type Filter struct {
	Since        time.Time
	OnlyFailures bool
	Contains     string
	Limit        int
}

// Stats summarises the store
type Stats struct {
	Total    int64
	Failures int64
	Oldest   time.Time
	Newest   time.Time
}

// Store defines history persistence
type Store interface {
	Record(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
	Query(ctx context.Context, filter Filter) ([]*Entry, error)
	Count(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

func storageError(err error, message string) error {
	return ckerror.Wrap(err, message).WithCode(ckerror.CodeStorage).WithOperation("history")
}

func prepare(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	// SQLite compares timestamps as text, so every stored time shares one zone
	entry.CreatedAt = entry.CreatedAt.UTC()
}
