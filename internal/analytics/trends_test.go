package analytics

import (
	"testing"
	"time"

	"duit/internal/core"
)

func tx(amountCents int64, category string, ts time.Time) core.Transaction {
	return core.Transaction{
		UserID:      "u1",
		Amount:      core.Money{Cents: amountCents},
		Category:    category,
		Description: "x",
		Timestamp:   ts,
	}
}

// monthlySeries spreads one transaction per month with the given totals,
// newest month containing `now`.
func monthlySeries(now time.Time, totals []int64) []core.Transaction {
	var txs []core.Transaction
	for i, total := range totals {
		monthsAgo := len(totals) - 1 - i
		ts := now.AddDate(0, -monthsAgo, 0)
		txs = append(txs, tx(total, "Daily Needs", ts))
	}
	return txs
}

func TestMonthlyTrendsDirection(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		totals []int64
		want   Trend
	}{
		{"increasing", []int64{1_000_000, 1_000_000, 2_000_000, 2_000_000}, TrendIncreasing},
		{"decreasing", []int64{2_000_000, 2_000_000, 1_000_000, 1_000_000}, TrendDecreasing},
		{"stable", []int64{1_000_000, 1_000_000, 1_050_000, 1_000_000}, TrendStable},
		{"just inside band", []int64{1_000_000, 1_100_000}, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, ok := MonthlyTrends(monthlySeries(now, tt.totals), 6, now)
			if !ok {
				t.Fatal("expected data")
			}
			if report.Trend != tt.want {
				t.Errorf("Trend = %s, want %s", report.Trend, tt.want)
			}
		})
	}
}

func TestMonthlyTrendsSummaries(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx(1_000_000, "Daily Needs", now.AddDate(0, -1, 0)),
		tx(3_000_000, "Transportation", now.AddDate(0, -1, 0)),
		tx(500_000, "Daily Needs", now),
	}
	report, ok := MonthlyTrends(txs, 6, now)
	if !ok {
		t.Fatal("expected data")
	}
	if report.MonthsAnalyzed != 2 {
		t.Fatalf("MonthsAnalyzed = %d, want 2", report.MonthsAnalyzed)
	}
	may := report.Months[0]
	if may.Total.Cents != 4_000_000 || may.Transactions != 2 {
		t.Errorf("first month = %+v", may)
	}
	if may.TopCategory != "Transportation" {
		t.Errorf("TopCategory = %s, want Transportation", may.TopCategory)
	}
	if may.AvgPerTransaction.Cents != 2_000_000 {
		t.Errorf("AvgPerTransaction = %d", may.AvgPerTransaction.Cents)
	}
	if report.HighestMonth != may.Month {
		t.Errorf("HighestMonth = %s, want %s", report.HighestMonth, may.Month)
	}
	if report.LowestMonth != report.Months[1].Month {
		t.Errorf("LowestMonth = %s", report.LowestMonth)
	}
	if report.AverageMonthly.Cents != 2_250_000 {
		t.Errorf("AverageMonthly = %d, want 2250000", report.AverageMonthly.Cents)
	}
}

func TestMonthlyTrendsExcludesOldAndEmpty(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	if _, ok := MonthlyTrends(nil, 6, now); ok {
		t.Fatal("no transactions should report no data")
	}

	old := []core.Transaction{tx(1_000_000, "Daily Needs", now.AddDate(-1, 0, 0))}
	if _, ok := MonthlyTrends(old, 6, now); ok {
		t.Fatal("transactions outside the window should report no data")
	}
}
