package analytics

import (
	"sort"
	"time"

	"duit/internal/core"
)

type VelocityPattern string

const (
	VelocityVeryFrequent VelocityPattern = "very_frequent" // several per day
	VelocityFrequent     VelocityPattern = "frequent"      // roughly daily
	VelocityRegular      VelocityPattern = "regular"       // every few days
	VelocityInfrequent   VelocityPattern = "infrequent"    // weekly or less
)

// burstGap is the maximum gap between consecutive transactions for them to
// belong to the same burst.
const burstGap = 2 * time.Hour

// burstMinTransactions is the minimum run length that counts as a burst.
const burstMinTransactions = 3

type Burst struct {
	Start    time.Time
	Count    int
	Total    core.Money
	Duration time.Duration
}

type VelocityReport struct {
	TotalTransactions int
	PeriodDays        int
	AverageGap        time.Duration
	MedianGap         time.Duration
	MinGap            time.Duration
	MaxGap            time.Duration
	Pattern           VelocityPattern
	Bursts            []Burst
	BurstsPerMonth    float64
}

// Velocity measures how quickly transactions follow one another. Pattern
// bands on the average gap: under 6h very_frequent, under 24h frequent,
// under 72h regular, otherwise infrequent. A burst is a chronological run of
// at least three transactions where every consecutive gap is under two
// hours. Returns ok=false with fewer than two transactions.
func Velocity(txs []core.Transaction) (VelocityReport, bool) {
	if len(txs) < 2 {
		return VelocityReport{}, false
	}
	sorted := append([]core.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	gaps := make([]time.Duration, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Timestamp.Sub(sorted[i-1].Timestamp))
	}

	// A same-day history still spans one day, so the per-month projection
	// never divides by zero.
	periodDays := int(sorted[len(sorted)-1].Timestamp.Sub(sorted[0].Timestamp).Hours() / 24)
	if periodDays < 1 {
		periodDays = 1
	}

	report := VelocityReport{
		TotalTransactions: len(sorted),
		PeriodDays:        periodDays,
		AverageGap:        meanDuration(gaps),
		MedianGap:         medianDuration(gaps),
		MinGap:            minDuration(gaps),
		MaxGap:            maxDuration(gaps),
	}

	switch avg := report.AverageGap; {
	case avg < 6*time.Hour:
		report.Pattern = VelocityVeryFrequent
	case avg < 24*time.Hour:
		report.Pattern = VelocityFrequent
	case avg < 72*time.Hour:
		report.Pattern = VelocityRegular
	default:
		report.Pattern = VelocityInfrequent
	}

	// Walk runs of sub-threshold gaps. A run of k gaps spans k+1 transactions.
	for i := 0; i < len(gaps); {
		if gaps[i] >= burstGap {
			i++
			continue
		}
		j := i
		for j < len(gaps) && gaps[j] < burstGap {
			j++
		}
		count := j - i + 1
		if count >= burstMinTransactions {
			var total int64
			var dur time.Duration
			for k := i; k <= j; k++ {
				total += sorted[k].Amount.Cents
			}
			for k := i; k < j; k++ {
				dur += gaps[k]
			}
			report.Bursts = append(report.Bursts, Burst{
				Start:    sorted[i].Timestamp,
				Count:    count,
				Total:    core.Money{Cents: total},
				Duration: dur,
			})
		}
		i = j
	}
	report.BurstsPerMonth = float64(len(report.Bursts)) / float64(report.PeriodDays) * 30
	return report, true
}

func meanDuration(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}

func medianDuration(ds []time.Duration) time.Duration {
	n := len(ds)
	if n == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), ds...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func minDuration(ds []time.Duration) time.Duration {
	lo := ds[0]
	for _, d := range ds[1:] {
		if d < lo {
			lo = d
		}
	}
	return lo
}

func maxDuration(ds []time.Duration) time.Duration {
	hi := ds[0]
	for _, d := range ds[1:] {
		if d > hi {
			hi = d
		}
	}
	return hi
}
