package evaluator

import (
	"context"
	"testing"
	"time"

	"duit/internal/alert"
	"duit/internal/budget"
	"duit/internal/core"
	"duit/internal/ledger/memory"
)

func newFixture(t *testing.T) (*Evaluator, *memory.Store, *budget.Store) {
	t.Helper()
	store := memory.New(nil)
	budgets := budget.NewStore(budget.NewMemoryRepository())
	ev := New(store, budgets, Options{})
	return ev, store, budgets
}

func record(t *testing.T, store *memory.Store, userID string, cents int64, category string, ts time.Time) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		UserID:      userID,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: "belanja",
		Timestamp:   ts,
	}
	if _, err := store.Append(context.Background(), tx); err != nil {
		t.Fatalf("Append: %v", err)
	}
	return tx
}

// Monday midday, far from weekend and odd-hour triggers.
var baseTime = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func TestEvaluateBudgetAlert(t *testing.T) {
	ev, store, budgets := newFixture(t)
	ctx := context.Background()

	if err := budgets.Set(ctx, core.CategoryBudget{
		UserID:   "u1",
		Category: "Daily Needs",
		Amount:   core.Money{Cents: 10_000_000},
	}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	record(t, store, "u1", 5_000_000, "Daily Needs", baseTime.Add(-24*time.Hour))
	tx := record(t, store, "u1", 4_000_000, "Daily Needs", baseTime)

	result, err := ev.EvaluateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if result.Budget.State != budget.StateWarning {
		t.Fatalf("Budget.State = %s, want warning", result.Budget.State)
	}
	if result.Budget.Percent != 90 {
		t.Errorf("Percent = %f, want 90", result.Budget.Percent)
	}
	if !hasAlert(result.Alerts, alert.TypeBudget) {
		t.Fatalf("expected a budget alert, got %+v", result.Alerts)
	}

	// An immediate re-evaluation is inside the cooldown.
	tx2 := record(t, store, "u1", 100_000, "Daily Needs", baseTime.Add(time.Minute))
	result2, err := ev.EvaluateTransaction(ctx, tx2)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if hasAlert(result2.Alerts, alert.TypeBudget) {
		t.Fatalf("budget alert should be gated, got %+v", result2.Alerts)
	}
}

func TestEvaluateNoBudget(t *testing.T) {
	ev, store, _ := newFixture(t)
	tx := record(t, store, "u1", 1_000_000, "Daily Needs", baseTime)

	result, err := ev.EvaluateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if result.Budget.State != budget.StateNoBudget {
		t.Fatalf("Budget.State = %s, want no_budget", result.Budget.State)
	}
	if len(result.Alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", result.Alerts)
	}
}

func TestEvaluateAnomalyGating(t *testing.T) {
	ev, store, _ := newFixture(t)
	ctx := context.Background()

	// Ten steady transactions build the baseline.
	for i := 0; i < 10; i++ {
		record(t, store, "u1", 2_000_000, "Transportation", baseTime.Add(-time.Duration(10-i)*24*time.Hour))
	}
	outlier := record(t, store, "u1", 50_000_000, "Transportation", baseTime)

	result, err := ev.EvaluateTransaction(ctx, outlier)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if !result.Anomalies.HasAnomalies {
		t.Fatal("expected an anomaly")
	}
	if !hasAlert(result.Alerts, alert.TypeAnomaly) {
		t.Fatalf("expected an anomaly alert, got %+v", result.Alerts)
	}

	// Same anomaly type again inside the cooldown stays in the report but
	// is not re-alerted.
	outlier2 := record(t, store, "u1", 55_000_000, "Transportation", baseTime.Add(30*time.Minute))
	result2, err := ev.EvaluateTransaction(ctx, outlier2)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if !result2.Anomalies.HasAnomalies {
		t.Fatal("second outlier should still be reported")
	}
	if hasAlert(result2.Alerts, alert.TypeAnomaly) {
		t.Fatalf("anomaly alert should be gated, got %+v", result2.Alerts)
	}
}

func TestEvaluateVelocityAlert(t *testing.T) {
	ev, store, _ := newFixture(t)
	ctx := context.Background()

	// Enough history that patterns analyze, spread out in time.
	for i := 0; i < 10; i++ {
		record(t, store, "u1", 1_000_000, "Daily Needs", baseTime.Add(-time.Duration(20-i)*24*time.Hour))
	}
	// Three transactions inside two hours totalling Rp 600.000.
	record(t, store, "u1", 20_000_000, "Daily Needs", baseTime.Add(-90*time.Minute))
	record(t, store, "u1", 20_000_000, "Daily Needs", baseTime.Add(-45*time.Minute))
	tx := record(t, store, "u1", 20_000_000, "Daily Needs", baseTime)

	result, err := ev.EvaluateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if !hasAlert(result.Alerts, alert.TypeVelocity) {
		t.Fatalf("expected a velocity alert, got %+v", result.Alerts)
	}
}

func TestEvaluateVelocityBelowTotal(t *testing.T) {
	ev, store, _ := newFixture(t)

	record(t, store, "u1", 1_000_000, "Daily Needs", baseTime.Add(-90*time.Minute))
	record(t, store, "u1", 1_000_000, "Daily Needs", baseTime.Add(-45*time.Minute))
	tx := record(t, store, "u1", 1_000_000, "Daily Needs", baseTime)

	result, err := ev.EvaluateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if hasAlert(result.Alerts, alert.TypeVelocity) {
		t.Fatalf("small total should not alert, got %+v", result.Alerts)
	}
}

func TestEvaluateWeekendAlert(t *testing.T) {
	ev, store, _ := newFixture(t)
	ctx := context.Background()
	saturday := time.Date(2025, 6, 7, 15, 0, 0, 0, time.UTC)

	tx := record(t, store, "u1", 25_000_000, "Entertainment", saturday)
	result, err := ev.EvaluateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if !hasAlert(result.Alerts, alert.TypeWeekend) {
		t.Fatalf("expected a weekend alert, got %+v", result.Alerts)
	}

	// Once per calendar day.
	tx2 := record(t, store, "u1", 30_000_000, "Entertainment", saturday.Add(2*time.Hour))
	result2, err := ev.EvaluateTransaction(ctx, tx2)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if hasAlert(result2.Alerts, alert.TypeWeekend) {
		t.Fatalf("weekend alert should fire once per day, got %+v", result2.Alerts)
	}

	// Weekday spends never trigger it.
	tx3 := record(t, store, "u1", 30_000_000, "Entertainment", baseTime)
	result3, err := ev.EvaluateTransaction(ctx, tx3)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if hasAlert(result3.Alerts, alert.TypeWeekend) {
		t.Fatalf("weekday should not alert, got %+v", result3.Alerts)
	}
}

func TestEvaluateUsersIndependent(t *testing.T) {
	ev, store, _ := newFixture(t)
	ctx := context.Background()
	saturday := time.Date(2025, 6, 7, 15, 0, 0, 0, time.UTC)

	tx1 := record(t, store, "u1", 25_000_000, "Entertainment", saturday)
	tx2 := record(t, store, "u2", 25_000_000, "Entertainment", saturday)

	r1, err := ev.EvaluateTransaction(ctx, tx1)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	r2, err := ev.EvaluateTransaction(ctx, tx2)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if !hasAlert(r1.Alerts, alert.TypeWeekend) || !hasAlert(r2.Alerts, alert.TypeWeekend) {
		t.Fatalf("one user's cooldown must not gate another: %+v / %+v", r1.Alerts, r2.Alerts)
	}
}

func TestEvaluateRejectsInvalid(t *testing.T) {
	ev, _, _ := newFixture(t)
	if _, err := ev.EvaluateTransaction(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("invalid transaction should be rejected")
	}
}

func hasAlert(alerts []Alert, alertType string) bool {
	for _, a := range alerts {
		if a.Type == alertType {
			return true
		}
	}
	return false
}
