// Package memory holds an in-memory ledger used by tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"duit/internal/core"
	"duit/internal/ledger"
)

type Store struct {
	mu   sync.Mutex
	norm *ledger.Normalizer
	txs  []core.Transaction
}

func New(norm *ledger.Normalizer) *Store {
	if norm == nil {
		norm = ledger.NewNormalizer(nil)
	}
	return &Store{norm: norm}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	tx.Timestamp = s.norm.Normalize(tx.Timestamp)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	return fmt.Sprintf("mem:%d", len(s.txs)), nil
}

// ListTransactions returns the user's transactions inside [since, until),
// ordered by timestamp.
func (s *Store) ListTransactions(_ context.Context, userID string, since, until time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if tx.UserID != userID {
			continue
		}
		if tx.Timestamp.Before(since) || !tx.Timestamp.Before(until) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// ListUserIDs returns every user with at least one transaction, sorted.
func (s *Store) ListUserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, tx := range s.txs {
		if _, ok := seen[tx.UserID]; ok {
			continue
		}
		seen[tx.UserID] = struct{}{}
		out = append(out, tx.UserID)
	}
	sort.Strings(out)
	return out, nil
}

var (
	_ ledger.Reader   = (*Store)(nil)
	_ ledger.Appender = (*Store)(nil)
)
