package cache

import (
	"context"
	"testing"
	"time"

	"duit/internal/core"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v", v, ok)
	}

	// "b" is now least recently used; adding "c" evicts it.
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) after eviction = %d, %v", v, ok)
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[int](10, time.Nanosecond)
	c.Set("a", 1)
	time.Sleep(time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry should be absent")
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d, want 0 after expiry read", c.Size())
	}
}

func TestLRUDeletePrefix(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Set("u1|a", 1)
	c.Set("u1|b", 2)
	c.Set("u2|a", 3)

	if n := c.DeletePrefix("u1|"); n != 2 {
		t.Fatalf("DeletePrefix = %d, want 2", n)
	}
	if _, ok := c.Get("u1|a"); ok {
		t.Fatal("u1|a should be gone")
	}
	if v, ok := c.Get("u2|a"); !ok || v != 3 {
		t.Fatalf("Get(u2|a) = %d, %v", v, ok)
	}
}

func TestLRUCleanExpired(t *testing.T) {
	c := NewLRU[int](10, time.Nanosecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(time.Millisecond)
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d, want 0", c.Size())
	}
}

type countingReader struct {
	calls int
	txs   []core.Transaction
}

func (r *countingReader) ListTransactions(_ context.Context, _ string, _, _ time.Time) ([]core.Transaction, error) {
	r.calls++
	return r.txs, nil
}

func TestLedgerReaderCachesAndInvalidates(t *testing.T) {
	inner := &countingReader{txs: []core.Transaction{{UserID: "u1"}}}
	r := NewLedgerReader(inner, 10, time.Minute)
	ctx := context.Background()
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := r.ListTransactions(ctx, "u1", since, until); err != nil {
			t.Fatalf("ListTransactions: %v", err)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}

	// A different window misses.
	if _, err := r.ListTransactions(ctx, "u1", since, until.Add(time.Hour)); err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner calls = %d, want 2", inner.calls)
	}

	if n := r.Invalidate("u1"); n != 2 {
		t.Fatalf("Invalidate = %d, want 2", n)
	}
	if _, err := r.ListTransactions(ctx, "u1", since, until); err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("inner calls = %d, want 3", inner.calls)
	}
}
