// Package analytics derives descriptive reports from a user's transaction
// history: monthly trends, spending velocity, per-category insights and a
// comparison against reference spending shares. Every function is pure over
// its inputs; insufficient history is reported with an ok flag, never an
// error.
package analytics

import (
	"sort"
	"time"

	"duit/internal/core"
	"duit/internal/profile"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

const monthKeyLayout = "2006-01"

type MonthSummary struct {
	Month             string // "2006-01"
	Total             core.Money
	Transactions      int
	AvgPerTransaction core.Money
	TopCategory       string
}

type TrendReport struct {
	MonthsAnalyzed int
	Months         []MonthSummary // chronological
	Trend          Trend
	AverageMonthly core.Money
	HighestMonth   string
	LowestMonth    string
}

// MonthlyTrends groups the transactions of the trailing monthsBack*30 days by
// calendar month and classifies the direction of spend. The trend compares
// the mean of the later half of months against the earlier half: more than
// 10% above is increasing, more than 10% below is decreasing, anything in
// between is stable. Returns ok=false when no transaction falls inside the
// window.
func MonthlyTrends(txs []core.Transaction, monthsBack int, now time.Time) (TrendReport, bool) {
	if monthsBack <= 0 {
		monthsBack = 6
	}
	cutoff := now.Add(-time.Duration(monthsBack) * 30 * 24 * time.Hour)

	type bucket struct {
		total      int64
		count      int
		byCategory map[string]int64
	}
	months := map[string]*bucket{}
	for _, tx := range txs {
		if tx.Timestamp.Before(cutoff) {
			continue
		}
		key := tx.Timestamp.Format(monthKeyLayout)
		b := months[key]
		if b == nil {
			b = &bucket{byCategory: map[string]int64{}}
			months[key] = b
		}
		b.total += tx.Amount.Cents
		b.count++
		b.byCategory[tx.Category] += tx.Amount.Cents
	}
	if len(months) == 0 {
		return TrendReport{}, false
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	report := TrendReport{MonthsAnalyzed: len(keys), Trend: TrendStable}
	totals := make([]int64, 0, len(keys))
	for _, k := range keys {
		b := months[k]
		totals = append(totals, b.total)
		report.Months = append(report.Months, MonthSummary{
			Month:             k,
			Total:             core.Money{Cents: b.total},
			Transactions:      b.count,
			AvgPerTransaction: core.Money{Cents: b.total / int64(b.count)},
			TopCategory:       topCategory(b.byCategory),
		})
		if report.HighestMonth == "" || b.total > months[report.HighestMonth].total {
			report.HighestMonth = k
		}
		if report.LowestMonth == "" || b.total < months[report.LowestMonth].total {
			report.LowestMonth = k
		}
	}
	report.AverageMonthly = core.Money{Cents: int64(profile.Mean(totals))}

	if len(totals) >= 2 {
		half := len(totals) / 2
		early := profile.Mean(totals[:half])
		late := profile.Mean(totals[half:])
		switch {
		case late > early*1.1:
			report.Trend = TrendIncreasing
		case late < early*0.9:
			report.Trend = TrendDecreasing
		}
	}
	return report, true
}

func topCategory(byCategory map[string]int64) string {
	var best string
	var bestTotal int64
	for cat, total := range byCategory {
		if best == "" || total > bestTotal || (total == bestTotal && cat < best) {
			best = cat
			bestTotal = total
		}
	}
	return best
}
