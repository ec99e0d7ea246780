package cache

import (
	"context"
	"fmt"
	"time"

	"duit/internal/core"
	"duit/internal/ledger"
)

// LedgerReader decorates a ledger.Reader with an LRU of per-user windows.
// Invalidate must be called whenever a new transaction is recorded for a
// user, otherwise evaluations may run on a stale window until the TTL
// expires.
type LedgerReader struct {
	inner ledger.Reader
	lru   *LRU[[]core.Transaction]
}

var _ ledger.Reader = (*LedgerReader)(nil)

func NewLedgerReader(inner ledger.Reader, maxSize int, ttl time.Duration) *LedgerReader {
	return &LedgerReader{inner: inner, lru: NewLRU[[]core.Transaction](maxSize, ttl)}
}

func (r *LedgerReader) ListTransactions(ctx context.Context, userID string, since, until time.Time) ([]core.Transaction, error) {
	key := windowKey(userID, since, until)
	if txs, ok := r.lru.Get(key); ok {
		return txs, nil
	}
	txs, err := r.inner.ListTransactions(ctx, userID, since, until)
	if err != nil {
		return nil, err
	}
	r.lru.Set(key, txs)
	return txs, nil
}

// Invalidate drops every cached window for the user.
func (r *LedgerReader) Invalidate(userID string) int {
	return r.lru.DeletePrefix(userID + "|")
}

func windowKey(userID string, since, until time.Time) string {
	return fmt.Sprintf("%s|%d|%d", userID, since.Unix(), until.Unix())
}
