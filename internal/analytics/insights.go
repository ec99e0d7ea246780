package analytics

import (
	"sort"
	"time"

	"duit/internal/core"
	"duit/internal/profile"
)

type SpendingPattern string

const (
	PatternConsistentDaily   SpendingPattern = "consistent_daily"
	PatternVariableDaily     SpendingPattern = "variable_daily"
	PatternConsistentRegular SpendingPattern = "consistent_regular"
	PatternVariableRegular   SpendingPattern = "variable_regular"
	PatternOccasional        SpendingPattern = "occasional"
	PatternLargeInfrequent   SpendingPattern = "large_infrequent"
	PatternInfrequent        SpendingPattern = "infrequent"
)

// largeInfrequentCents marks a category mean above which rare spending is
// labelled large rather than merely infrequent (Rp 100.000).
const largeInfrequentCents = 10_000_000

type CategoryInsight struct {
	Category       string
	Total          core.Money
	Share          float64 // percent of total spend in the window
	Count          int
	Mean           float64 // cents
	Median         float64 // cents
	Min            core.Money
	Max            core.Money
	DaysActive     int
	FrequencyScore float64 // percent of window days with activity
	Pattern        SpendingPattern
}

type InsightsReport struct {
	PeriodDays        int
	TotalSpending     core.Money
	TotalTransactions int
	DailyAverage      float64 // cents

	// Categories is sorted by Total descending, so it doubles as the
	// by-amount ranking.
	Categories []CategoryInsight

	ByFrequency []string // category names by FrequencyScore descending
	ByAverage   []string // category names by Mean descending
}

// CategoryInsights summarizes the trailing periodDays of spending per
// category. Returns ok=false when the window holds no transactions.
func CategoryInsights(txs []core.Transaction, periodDays int, now time.Time) (InsightsReport, bool) {
	if periodDays <= 0 {
		periodDays = 30
	}
	cutoff := now.Add(-time.Duration(periodDays) * 24 * time.Hour)

	type bucket struct {
		amounts []int64
		days    map[string]struct{}
	}
	buckets := map[string]*bucket{}
	var total int64
	var n int
	for _, tx := range txs {
		if tx.Timestamp.Before(cutoff) {
			continue
		}
		b := buckets[tx.Category]
		if b == nil {
			b = &bucket{days: map[string]struct{}{}}
			buckets[tx.Category] = b
		}
		b.amounts = append(b.amounts, tx.Amount.Cents)
		b.days[tx.Timestamp.Format("2006-01-02")] = struct{}{}
		total += tx.Amount.Cents
		n++
	}
	if n == 0 {
		return InsightsReport{}, false
	}

	report := InsightsReport{
		PeriodDays:        periodDays,
		TotalSpending:     core.Money{Cents: total},
		TotalTransactions: n,
		DailyAverage:      float64(total) / float64(periodDays),
	}
	for cat, b := range buckets {
		var catTotal int64
		for _, a := range b.amounts {
			catTotal += a
		}
		lo, hi := profile.MinMax(b.amounts)
		report.Categories = append(report.Categories, CategoryInsight{
			Category:       cat,
			Total:          core.Money{Cents: catTotal},
			Share:          float64(catTotal) / float64(total) * 100,
			Count:          len(b.amounts),
			Mean:           profile.Mean(b.amounts),
			Median:         profile.Median(b.amounts),
			Min:            core.Money{Cents: lo},
			Max:            core.Money{Cents: hi},
			DaysActive:     len(b.days),
			FrequencyScore: float64(len(b.days)) / float64(periodDays) * 100,
			Pattern:        classifyPattern(b.amounts, len(b.days)),
		})
	}

	sort.SliceStable(report.Categories, func(i, j int) bool {
		a, b := report.Categories[i], report.Categories[j]
		if a.Total.Cents != b.Total.Cents {
			return a.Total.Cents > b.Total.Cents
		}
		return a.Category < b.Category
	})
	report.ByFrequency = rankedNames(report.Categories, func(c CategoryInsight) float64 { return c.FrequencyScore })
	report.ByAverage = rankedNames(report.Categories, func(c CategoryInsight) float64 { return c.Mean })
	return report, true
}

// classifyPattern labels a category by how often and how evenly it is spent
// on. Bands on active days (20/10/5 of a 30-day window) with a coefficient
// of variation split at 0.3 for the frequent bands.
func classifyPattern(amounts []int64, daysActive int) SpendingPattern {
	if len(amounts) <= 1 {
		return PatternInfrequent
	}
	m := profile.Mean(amounts)
	cv := 0.0
	if m > 0 {
		cv = profile.SampleStdev(amounts) / m
	}
	switch {
	case daysActive >= 20:
		if cv < 0.3 {
			return PatternConsistentDaily
		}
		return PatternVariableDaily
	case daysActive >= 10:
		if cv < 0.3 {
			return PatternConsistentRegular
		}
		return PatternVariableRegular
	case daysActive >= 5:
		return PatternOccasional
	case m > largeInfrequentCents:
		return PatternLargeInfrequent
	default:
		return PatternInfrequent
	}
}

func rankedNames(cats []CategoryInsight, score func(CategoryInsight) float64) []string {
	ranked := append([]CategoryInsight(nil), cats...)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := score(ranked[i]), score(ranked[j])
		if si != sj {
			return si > sj
		}
		return ranked[i].Category < ranked[j].Category
	})
	names := make([]string, len(ranked))
	for i, c := range ranked {
		names[i] = c.Category
	}
	return names
}
