// Package cache provides the two caches of the preprocessing pipeline:
// a durable file-summary store keyed by absolute path, and the
// process-local context-summary cache keyed by conversation.
package cache

import (
	"context"
	"sync"
	"time"
)

// FileSummary is a cached digest for a single file. Entries have no TTL;
// a hit is trusted until the entry is removed by the caller.
type FileSummary struct {
	Content  string    `json:"content"`
	CachedAt time.Time `json:"cached_at"`
}

// SummaryStore persists file digests keyed by absolute path.
// Implementations fail open: a backend error behaves like a miss and is
// never surfaced to the pipeline.
type SummaryStore interface {
	Get(ctx context.Context, path string) (*FileSummary, error)
	Put(ctx context.Context, path, content string) error
}

// MemoryStore is an in-process SummaryStore, used when no durable
// backend is configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]FileSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]FileSummary)}
}

func (s *MemoryStore) Get(ctx context.Context, path string) (*FileSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[path]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (s *MemoryStore) Put(ctx context.Context, path, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = FileSummary{Content: content, CachedAt: time.Now()}
	return nil
}

// Delete removes an entry; manual invalidation is the only expiry.
func (s *MemoryStore) Delete(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, path)
}
