// Package profile computes descriptive spending statistics from a window of
// ledger transactions. Profiles are derived and ephemeral: they are recomputed
// on every evaluation and never persisted.
package profile

import (
	"time"

	"duit/internal/core"
)

// MinTransactionsForPatterns is the number of historical transactions needed
// before pattern-level statistics are considered trustworthy.
const MinTransactionsForPatterns = 10

// MinCategorySamples is the number of same-category amounts needed before the
// z-score rule may be applied to that category.
const MinCategorySamples = 3

// CategoryProfile holds descriptive statistics for one category's amounts,
// all in cents.
type CategoryProfile struct {
	Category    string
	Mean        float64
	Median      float64
	Stdev       float64
	Min         int64
	Max         int64
	SampleCount int
}

// DailyStats summarizes the distribution of per-day spending totals.
type DailyStats struct {
	Mean   float64
	Median float64
	Stdev  float64
}

// Patterns is the full profiler output for one user's transaction window.
type Patterns struct {
	Enough            bool
	TotalTransactions int
	// Categories holds per-category statistics, only for categories with at
	// least MinCategorySamples amounts.
	Categories map[string]CategoryProfile
	Daily      DailyStats
	// Hourly counts transactions per hour of day (0-23) across all categories.
	Hourly map[int]int
}

// Category computes a profile over the same-category amounts in txs.
// It requires no minimum sample count; callers gate on SampleCount themselves.
func Category(category string, txs []core.Transaction) CategoryProfile {
	var amounts []int64
	for _, tx := range txs {
		if tx.Category == category {
			amounts = append(amounts, tx.Amount.Cents)
		}
	}
	return fromAmounts(category, amounts)
}

// Analyze profiles a user's full transaction window: per-category statistics,
// the daily-total distribution, and the hour-of-day histogram.
func Analyze(txs []core.Transaction) *Patterns {
	p := &Patterns{
		TotalTransactions: len(txs),
		Enough:            len(txs) >= MinTransactionsForPatterns,
		Categories:        make(map[string]CategoryProfile),
		Hourly:            make(map[int]int),
	}

	byCategory := make(map[string][]int64)
	dailyTotals := make(map[string]int64)

	for _, tx := range txs {
		byCategory[tx.Category] = append(byCategory[tx.Category], tx.Amount.Cents)
		dailyTotals[tx.Timestamp.Format("2006-01-02")] += tx.Amount.Cents
		p.Hourly[tx.Timestamp.Hour()]++
	}

	for category, amounts := range byCategory {
		if len(amounts) < MinCategorySamples {
			continue
		}
		p.Categories[category] = fromAmounts(category, amounts)
	}

	daily := make([]int64, 0, len(dailyTotals))
	for _, total := range dailyTotals {
		daily = append(daily, total)
	}
	p.Daily = DailyStats{
		Mean:   Mean(daily),
		Median: Median(daily),
		Stdev:  SampleStdev(daily),
	}

	return p
}

// SpentInWindow sums amounts with timestamps in [since, until) for one
// category. An empty category matches everything.
func SpentInWindow(txs []core.Transaction, category string, since, until time.Time) core.Money {
	var cents int64
	for _, tx := range txs {
		if category != "" && tx.Category != category {
			continue
		}
		if tx.Timestamp.Before(since) || !tx.Timestamp.Before(until) {
			continue
		}
		cents += tx.Amount.Cents
	}
	return core.Money{Cents: cents}
}

func fromAmounts(category string, amounts []int64) CategoryProfile {
	lo, hi := MinMax(amounts)
	return CategoryProfile{
		Category:    category,
		Mean:        Mean(amounts),
		Median:      Median(amounts),
		Stdev:       SampleStdev(amounts),
		Min:         lo,
		Max:         hi,
		SampleCount: len(amounts),
	}
}
