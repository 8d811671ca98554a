package cache

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell-labs/inkwell-core/internal/types"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	entry, err := s.Get(ctx, "/tmp/a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry != nil {
		t.Fatal("expected miss on empty store")
	}

	if err := s.Put(ctx, "/tmp/a.txt", "digest"); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	entry, err = s.Get(ctx, "/tmp/a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry == nil || entry.Content != "digest" {
		t.Fatalf("expected cached digest, got %+v", entry)
	}
	if entry.CachedAt.IsZero() {
		t.Error("expected CachedAt to be set")
	}
}

func TestMemoryStore_ManualInvalidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Put(ctx, "/tmp/a.txt", "digest")
	s.Delete("/tmp/a.txt")

	entry, _ := s.Get(ctx, "/tmp/a.txt")
	if entry != nil {
		t.Error("expected miss after delete")
	}
}

func TestRedisStore_NilClient_FailOpen(t *testing.T) {
	s := NewRedisStore(nil)
	ctx := context.Background()

	entry, err := s.Get(ctx, "/tmp/a.txt")
	if err != nil {
		t.Fatalf("nil-client get must not error: %v", err)
	}
	if entry != nil {
		t.Error("nil-client get must miss")
	}
	if err := s.Put(ctx, "/tmp/a.txt", "digest"); err != nil {
		t.Fatalf("nil-client put must not error: %v", err)
	}
}

func TestPostgresStore_NilPool_FailOpen(t *testing.T) {
	s := NewPostgresStore(nil)
	ctx := context.Background()

	entry, err := s.Get(ctx, "/tmp/a.txt")
	if err != nil || entry != nil {
		t.Errorf("nil-pool get must miss without error, got %+v, %v", entry, err)
	}
	if err := s.Put(ctx, "/tmp/a.txt", "digest"); err != nil {
		t.Errorf("nil-pool put must not error: %v", err)
	}
}

func TestContextCache_RoundTrip(t *testing.T) {
	c := NewContextCache()

	if _, ok := c.Get("conv1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("conv1", &ContextSummaryEntry{
		SummaryMessage:       &types.Message{Role: types.RoleAssistant, Content: "summary"},
		SummarizedMessageIDs: []string{"a", "b"},
		TotalChars:           42,
	})

	entry, ok := c.Get("conv1")
	if !ok {
		t.Fatal("expected hit")
	}
	if entry.SummaryMessage.Content != "summary" {
		t.Errorf("unexpected summary: %q", entry.SummaryMessage.Content)
	}
	if entry.CreatedAt.IsZero() || entry.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestContextCache_UpdatePreservesCreatedAt(t *testing.T) {
	c := NewContextCache()

	c.Put("conv1", &ContextSummaryEntry{SummarizedMessageIDs: []string{"a"}})
	first, _ := c.Get("conv1")
	created := first.CreatedAt

	time.Sleep(5 * time.Millisecond)
	c.Put("conv1", &ContextSummaryEntry{SummarizedMessageIDs: []string{"a", "b"}})

	second, _ := c.Get("conv1")
	if !second.CreatedAt.Equal(created) {
		t.Error("update must preserve CreatedAt")
	}
	if !second.UpdatedAt.After(created) {
		t.Error("update must refresh UpdatedAt")
	}
}

func TestContextCache_KeysAreIndependent(t *testing.T) {
	c := NewContextCache()
	c.Put("a", &ContextSummaryEntry{TotalChars: 1})
	c.Put("b", &ContextSummaryEntry{TotalChars: 2})

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a deleted")
	}
	if entry, ok := c.Get("b"); !ok || entry.TotalChars != 2 {
		t.Error("unrelated key must survive")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}
