package budget

import (
	"context"
	"errors"
	"fmt"

	"duit/internal/core"
)

type State string

const (
	StateNoBudget State = "no_budget"
	StateSafe     State = "safe"
	StateWarning  State = "warning"
	StateExceeded State = "exceeded"
)

// Status is the result of comparing spending against a category budget.
type Status struct {
	State     State
	Budget    core.Money
	Spent     core.Money
	Remaining core.Money
	Percent   float64
	Threshold int
	Message   string
}

// Evaluate classifies spent against the budget:
// percent below the alert threshold is safe, at or above it but below 100 is
// a warning, and at or above 100 is exceeded. Percent is never negative and
// may exceed 100.
func Evaluate(b core.CategoryBudget, spent core.Money) Status {
	percent := float64(spent.Cents) / float64(b.Amount.Cents) * 100
	if percent < 0 {
		percent = 0
	}
	remaining := b.Amount.Cents - spent.Cents
	if remaining < 0 {
		remaining = 0
	}

	st := Status{
		Budget:    b.Amount,
		Spent:     spent,
		Remaining: core.Money{Cents: remaining},
		Percent:   percent,
		Threshold: b.AlertThreshold,
	}
	switch {
	case percent >= 100:
		st.State = StateExceeded
		st.Message = fmt.Sprintf("budget exceeded: spent %s of %s for %s",
			spent.Format(), b.Amount.Format(), b.Category)
	case percent >= float64(b.AlertThreshold):
		st.State = StateWarning
		st.Message = fmt.Sprintf("budget warning: spent %s (%.1f%%) of %s for %s",
			spent.Format(), percent, b.Amount.Format(), b.Category)
	default:
		st.State = StateSafe
		st.Message = fmt.Sprintf("budget safe: spent %s (%.1f%%) of %s for %s",
			spent.Format(), percent, b.Amount.Format(), b.Category)
	}
	return st
}

// Status looks up the budget for (userID, category) and evaluates spent
// against it. A missing budget yields StateNoBudget, not an error.
func (s *Store) Status(ctx context.Context, userID, category string, spent core.Money) (Status, error) {
	b, err := s.repo.Get(ctx, userID, category)
	if errors.Is(err, ErrNotFound) {
		return Status{State: StateNoBudget, Spent: spent, Message: "no budget set for this category"}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("budget status: %w", err)
	}
	return Evaluate(b, spent), nil
}

// Suggestions are default monthly budget amounts per category, either fixed
// or derived from monthly income ratios.
func Suggestions(income core.Money) map[string]core.Money {
	if income.Cents <= 0 {
		return map[string]core.Money{
			"Daily Needs":    {Cents: 2_000_000 * 100},
			"Transportation": {Cents: 800_000 * 100},
			"Utilities":      {Cents: 500_000 * 100},
			"Entertainment":  {Cents: 600_000 * 100},
			"Health":         {Cents: 300_000 * 100},
			"Urgent":         {Cents: 200_000 * 100},
		}
	}
	ratio := func(pct int64) core.Money {
		return core.Money{Cents: income.Cents * pct / 100}
	}
	return map[string]core.Money{
		"Daily Needs":    ratio(35),
		"Transportation": ratio(15),
		"Utilities":      ratio(10),
		"Entertainment":  ratio(15),
		"Health":         ratio(5),
		"Urgent":         ratio(5),
	}
}
