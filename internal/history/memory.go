// File: memory.go
// Title: In-Memory History Store
// Description: Store implementation for tests and sessions without a
//              database file.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial memory store

package history

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps entries in insertion order
type MemoryStore struct {
	entries []*Entry
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record stores a copy of entry
func (s *MemoryStore) Record(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(entry)
	stored := *entry
	s.entries = append(s.entries, &stored)
	return nil
}

// Recent returns the newest entries first
func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	return s.Query(ctx, Filter{Limit: limit})
}

// Query retrieves entries matching filter, newest first
func (s *MemoryStore) Query(_ context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if !filter.Since.IsZero() && e.CreatedAt.Before(filter.Since) {
			continue
		}
		if filter.OnlyFailures && !e.Failed() {
			continue
		}
		if filter.Contains != "" && !strings.Contains(e.Input, filter.Contains) {
			continue
		}
		copied := *e
		out = append(out, &copied)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of stored entries
func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}

// Stats returns totals and the time range covered
func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	for _, e := range s.entries {
		stats.Total++
		if e.Failed() {
			stats.Failures++
		}
		if stats.Oldest.IsZero() || e.CreatedAt.Before(stats.Oldest) {
			stats.Oldest = e.CreatedAt
		}
		if e.CreatedAt.After(stats.Newest) {
			stats.Newest = e.CreatedAt
		}
	}
	return stats, nil
}

// Prune removes entries older than the given age
func (s *MemoryStore) Prune(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	kept := s.entries[:0]
	var deleted int64
	for _, e := range s.entries {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
