package profile

import (
	"math"
	"testing"
	"time"

	"duit/internal/core"
)

func tx(category string, cents int64, ts time.Time) core.Transaction {
	return core.Transaction{
		UserID:      "u1",
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: "test",
		Timestamp:   ts,
	}
}

func TestCategoryStats(t *testing.T) {
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	// mean 22800, sample stdev sqrt(14_800_000/4) ~= 1923.538
	amounts := []int64{20000, 25000, 22000, 24000, 23000}
	var txs []core.Transaction
	for i, a := range amounts {
		txs = append(txs, tx("Transportation", a, base.AddDate(0, 0, i)))
	}
	txs = append(txs, tx("Health", 99999, base))

	p := Category("Transportation", txs)
	if p.SampleCount != 5 {
		t.Fatalf("SampleCount = %d, want 5", p.SampleCount)
	}
	if p.Mean != 22800 {
		t.Fatalf("Mean = %v, want 22800", p.Mean)
	}
	if p.Median != 23000 {
		t.Fatalf("Median = %v, want 23000", p.Median)
	}
	if math.Abs(p.Stdev-1923.538) > 0.01 {
		t.Fatalf("Stdev = %v, want ~1923.538", p.Stdev)
	}
	if p.Min != 20000 || p.Max != 25000 {
		t.Fatalf("Min/Max = %d/%d, want 20000/25000", p.Min, p.Max)
	}
}

func TestCategoryStatsEdgeCases(t *testing.T) {
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	empty := Category("Transportation", nil)
	if empty.SampleCount != 0 || empty.Mean != 0 || empty.Stdev != 0 {
		t.Fatalf("empty profile should be all zero, got %+v", empty)
	}

	single := Category("Transportation", []core.Transaction{tx("Transportation", 5000, base)})
	if single.SampleCount != 1 {
		t.Fatalf("SampleCount = %d, want 1", single.SampleCount)
	}
	if single.Stdev != 0 {
		t.Fatalf("single-sample stdev must be 0, got %v", single.Stdev)
	}
	if single.Mean != 5000 || single.Median != 5000 {
		t.Fatalf("single-sample mean/median = %v/%v, want 5000/5000", single.Mean, single.Median)
	}

	even := Category("X", []core.Transaction{
		tx("X", 100, base), tx("X", 300, base), tx("X", 200, base), tx("X", 400, base),
	})
	if even.Median != 250 {
		t.Fatalf("even-count median = %v, want 250", even.Median)
	}
}

func TestAnalyze(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	var txs []core.Transaction
	// 12 transactions over 4 days, two categories
	for i := 0; i < 8; i++ {
		txs = append(txs, tx("Daily Needs", 10000+int64(i)*1000, base.AddDate(0, 0, i/2)))
	}
	for i := 0; i < 4; i++ {
		txs = append(txs, tx("Transportation", 20000, base.Add(time.Duration(i)*time.Hour).AddDate(0, 0, i)))
	}

	p := Analyze(txs)
	if !p.Enough {
		t.Fatalf("12 transactions should be enough for patterns")
	}
	if p.TotalTransactions != 12 {
		t.Fatalf("TotalTransactions = %d, want 12", p.TotalTransactions)
	}
	if _, ok := p.Categories["Daily Needs"]; !ok {
		t.Fatalf("expected Daily Needs profile")
	}
	if _, ok := p.Categories["Transportation"]; !ok {
		t.Fatalf("expected Transportation profile")
	}
	if p.Hourly[9] == 0 {
		t.Fatalf("expected activity at hour 9")
	}
	if p.Daily.Mean <= 0 {
		t.Fatalf("daily mean should be positive, got %v", p.Daily.Mean)
	}
}

func TestAnalyzeSkipsSparseCategories(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	var txs []core.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, tx("Daily Needs", 10000, base.AddDate(0, 0, i)))
	}
	txs = append(txs, tx("Urgent", 900000, base), tx("Urgent", 950000, base))

	p := Analyze(txs)
	if _, ok := p.Categories["Urgent"]; ok {
		t.Fatalf("category with 2 samples must not get a profile")
	}
}

func TestAnalyzeNotEnough(t *testing.T) {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	var txs []core.Transaction
	for i := 0; i < 9; i++ {
		txs = append(txs, tx("Daily Needs", 10000, base.AddDate(0, 0, i)))
	}
	if p := Analyze(txs); p.Enough {
		t.Fatalf("9 transactions must not be enough for patterns")
	}
}

func TestSpentInWindow(t *testing.T) {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("Health", 10000, base.Add(1*time.Hour)),
		tx("Health", 20000, base.Add(30*time.Hour)),
		tx("Transportation", 5000, base.Add(2*time.Hour)),
	}
	got := SpentInWindow(txs, "Health", base, base.Add(24*time.Hour))
	if got.Cents != 10000 {
		t.Fatalf("SpentInWindow = %d, want 10000", got.Cents)
	}
	all := SpentInWindow(txs, "", base, base.Add(48*time.Hour))
	if all.Cents != 35000 {
		t.Fatalf("SpentInWindow all = %d, want 35000", all.Cents)
	}
}
