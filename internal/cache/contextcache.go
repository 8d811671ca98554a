package cache

import (
	"sync"
	"time"

	"github.com/inkwell-labs/inkwell-core/internal/types"
)

// DefaultContextKey is used when the caller does not name a
// conversation; it effectively means "the current conversation".
const DefaultContextKey = "current"

// ContextSummaryEntry records what a running conversation summary
// covers. SummarizedMessageIDs is the full covered set, not a delta;
// its last element is the anchor for locating the incremental cut.
type ContextSummaryEntry struct {
	SummaryMessage       *types.Message
	SummarizedMessageIDs []string
	TotalChars           int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// ContextCache holds per-conversation summary entries for the lifetime
// of the process. It is an explicitly constructed service threaded
// through the pipeline, not a package-level singleton. Entries never
// expire; they are invalidated only by divergence detection in the
// context summarizer.
type ContextCache struct {
	mu      sync.RWMutex
	entries map[string]*ContextSummaryEntry
}

func NewContextCache() *ContextCache {
	return &ContextCache{entries: make(map[string]*ContextSummaryEntry)}
}

func (c *ContextCache) Get(key string) (*ContextSummaryEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

func (c *ContextCache) Put(key string, entry *ContextSummaryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.entries[key]; ok && !prev.CreatedAt.IsZero() {
		entry.CreatedAt = prev.CreatedAt
	} else if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.UpdatedAt = time.Now()
	c.entries[key] = entry
}

func (c *ContextCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of tracked conversations.
func (c *ContextCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
