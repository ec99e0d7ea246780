package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly BudgetPeriod = "monthly"
	Weekly  BudgetPeriod = "weekly"
)

// DefaultAlertThreshold is the budget alert threshold (percent) applied when
// the user does not pick one explicitly.
const DefaultAlertThreshold = 80

type (
	BudgetPeriod string

	Money struct {
		Cents int64
	}

	// Transaction is one recorded expense. Transactions are append-only:
	// the ledger collaborator writes them and nothing in this module ever
	// mutates or deletes one. Timestamp is always zoned; the ledger boundary
	// normalizes every row to the canonical location before it reaches here.
	Transaction struct {
		UserID      string
		Amount      Money
		Category    string
		Description string
		Timestamp   time.Time
	}

	// CategoryBudget is a user-set spending ceiling for one category.
	// One record per (UserID, Category).
	CategoryBudget struct {
		UserID         string
		Category       string
		Amount         Money
		Period         BudgetPeriod
		AlertThreshold int // percent of budget that triggers a warning
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyUserID      = errors.New("empty user id")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrZeroTimestamp    = errors.New("zero timestamp")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUserID
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}

func (b CategoryBudget) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	switch b.Period {
	case Monthly, Weekly:
	default:
		return errors.New("invalid budget period")
	}
	if b.AlertThreshold <= 0 || b.AlertThreshold > 100 {
		return errors.New("alert threshold must be in (0, 100]")
	}
	return nil
}
