package core

import (
	"testing"
	"time"
)

func validTx() Transaction {
	return Transaction{
		UserID:      "u1",
		Amount:      Money{Cents: 2500000},
		Category:    "Daily Needs",
		Description: "nasi goreng",
		Timestamp:   time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -100}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTx().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(*Transaction){
		func(tx *Transaction) { tx.UserID = " " },
		func(tx *Transaction) { tx.Amount = Money{} },
		func(tx *Transaction) { tx.Category = "" },
		func(tx *Transaction) { tx.Description = "  " },
		func(tx *Transaction) { tx.Timestamp = time.Time{} },
	}
	for i, mutate := range bads {
		tx := validTx()
		mutate(&tx)
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCategoryBudgetValidate(t *testing.T) {
	good := CategoryBudget{
		UserID:         "u1",
		Category:       "Health",
		Amount:         Money{Cents: 30000000},
		Period:         Monthly,
		AlertThreshold: DefaultAlertThreshold,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(*CategoryBudget){
		func(b *CategoryBudget) { b.UserID = "" },
		func(b *CategoryBudget) { b.Category = "" },
		func(b *CategoryBudget) { b.Amount = Money{Cents: -1} },
		func(b *CategoryBudget) { b.Period = "daily" },
		func(b *CategoryBudget) { b.AlertThreshold = 0 },
		func(b *CategoryBudget) { b.AlertThreshold = 101 },
	}
	for i, mutate := range bads {
		b := good
		mutate(&b)
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
