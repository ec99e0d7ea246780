// Package budget owns per-user, per-category budget configuration and the
// spend-vs-budget evaluation. Persistence is delegated to a Repository port;
// the package ships an in-memory implementation and the SQLite one lives in
// internal/storage.
package budget

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"duit/internal/core"
)

// ErrNotFound is returned by repositories when no budget exists for a key.
var ErrNotFound = errors.New("budget not found")

// Repository is the persistence port for budget records.
type Repository interface {
	Get(ctx context.Context, userID, category string) (core.CategoryBudget, error)
	// Put creates or replaces the record for (budget.UserID, budget.Category).
	Put(ctx context.Context, budget core.CategoryBudget) error
	// Delete removes the record and reports whether one existed.
	Delete(ctx context.Context, userID, category string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]core.CategoryBudget, error)
}

// Store validates and manages budget records on top of a Repository.
type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Set creates or replaces the budget for (userID, category). A non-positive
// amount is rejected. Zero period and threshold take their defaults.
func (s *Store) Set(ctx context.Context, b core.CategoryBudget) error {
	if b.Period == "" {
		b.Period = core.Monthly
	}
	if b.AlertThreshold == 0 {
		b.AlertThreshold = core.DefaultAlertThreshold
	}
	if err := b.Validate(); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	if err := s.repo.Put(ctx, b); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

// Remove deletes the budget for (userID, category), reporting whether a
// record was removed. Removing an absent budget is not an error.
func (s *Store) Remove(ctx context.Context, userID, category string) (bool, error) {
	removed, err := s.repo.Delete(ctx, userID, category)
	if err != nil {
		return false, fmt.Errorf("remove budget: %w", err)
	}
	return removed, nil
}

// Get returns the budget for (userID, category) or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID, category string) (core.CategoryBudget, error) {
	return s.repo.Get(ctx, userID, category)
}

// List returns all budgets for a user, sorted by category.
func (s *Store) List(ctx context.Context, userID string) ([]core.CategoryBudget, error) {
	budgets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Category < budgets[j].Category })
	return budgets, nil
}

// MemoryRepository is a process-local Repository, used in tests and for the
// memory ledger backend. State is explicit and injected, never a package
// singleton.
type MemoryRepository struct {
	mu      sync.Mutex
	budgets map[string]map[string]core.CategoryBudget // userID -> category -> record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{budgets: make(map[string]map[string]core.CategoryBudget)}
}

func (r *MemoryRepository) Get(_ context.Context, userID, category string) (core.CategoryBudget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.budgets[userID][category]
	if !ok {
		return core.CategoryBudget{}, ErrNotFound
	}
	return b, nil
}

func (r *MemoryRepository) Put(_ context.Context, budget core.CategoryBudget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.budgets[budget.UserID] == nil {
		r.budgets[budget.UserID] = make(map[string]core.CategoryBudget)
	}
	r.budgets[budget.UserID][budget.Category] = budget
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, category string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.budgets[userID][category]; !ok {
		return false, nil
	}
	delete(r.budgets[userID], category)
	return true, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]core.CategoryBudget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.CategoryBudget
	for _, b := range r.budgets[userID] {
		out = append(out, b)
	}
	return out, nil
}
