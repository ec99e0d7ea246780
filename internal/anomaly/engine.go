// Package anomaly flags unusual transactions using four independent
// detectors over descriptive statistics: amount outliers, odd-hour activity,
// burst frequency, and category shifts. Detectors are pure and isolated; a
// fault in one never blocks the others.
package anomaly

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"duit/internal/core"
	"duit/internal/profile"
)

// Thresholds are the named tuning knobs for all four detectors. They are
// deliberately overridable configuration, not business rules baked into code.
type Thresholds struct {
	OutlierZ          float64       // z-score above which an amount is unusual
	OutlierSevereZ    float64       // z-score above which severity becomes high
	OutlierFactor     float64       // fallback: multiple of historical max
	BurstWindow       time.Duration // trailing window for frequency counting
	BurstCount        int           // findings at or above this many transactions
	ShiftWindow       time.Duration // "recent" window for category shifts
	ShiftRecentMin    int           // minimum recent transactions
	ShiftHistoryMin   int           // minimum historical transactions
	ShiftRecentShare  float64       // percent of recent spending that qualifies
	ShiftHistoryShare float64       // percent of historical spending that disqualifies
}

// DefaultThresholds returns the stock detector tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OutlierZ:          2.0,
		OutlierSevereZ:    3.0,
		OutlierFactor:     2.0,
		BurstWindow:       24 * time.Hour,
		BurstCount:        8,
		ShiftWindow:       7 * 24 * time.Hour,
		ShiftRecentMin:    3,
		ShiftHistoryMin:   10,
		ShiftRecentShare:  40,
		ShiftHistoryShare: 20,
	}
}

// recentSlice is how many trailing transactions the burst detector inspects.
const recentSlice = 20

type Engine struct {
	thresholds Thresholds
}

func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{thresholds: thresholds}
}

// AmountOutlier checks whether amount is unusual for its category profile.
// With at least profile.MinCategorySamples samples and nonzero stdev it uses
// the z-score rule; otherwise it falls back to a multiple-of-max rule. It
// returns nil when no statistics are available at all.
func (e *Engine) AmountOutlier(prof profile.CategoryProfile, amount core.Money) *Finding {
	if prof.SampleCount >= profile.MinCategorySamples && prof.Stdev > 0 {
		z := (float64(amount.Cents) - prof.Mean) / prof.Stdev
		if z > e.thresholds.OutlierZ && amount.Cents > prof.Max {
			severity := SeverityMedium
			if z > e.thresholds.OutlierSevereZ {
				severity = SeverityHigh
			}
			lo := core.Money{Cents: int64(prof.Mean - prof.Stdev)}
			hi := core.Money{Cents: int64(prof.Mean + prof.Stdev)}
			return &Finding{
				Type:     TypeAmountOutlier,
				Severity: severity,
				Category: prof.Category,
				ZScore:   z,
				Message: fmt.Sprintf("%s expense of %s is higher than usual; normal range %s - %s",
					prof.Category, amount.Format(), lo.Format(), hi.Format()),
			}
		}
		return nil
	}

	// Not enough samples for a z-score, or no spread at all: compare against
	// the highest amount seen so far.
	if prof.SampleCount == 0 || prof.Max <= 0 {
		return nil
	}
	if amount.Cents > int64(e.thresholds.OutlierFactor*float64(prof.Max)) {
		return &Finding{
			Type:     TypeAmountOutlier,
			Severity: SeverityHigh,
			Category: prof.Category,
			Factor:   float64(amount.Cents) / float64(prof.Max),
			Message: fmt.Sprintf("%s expense of %s is far above the previous maximum of %s",
				prof.Category, amount.Format(), core.Money{Cents: prof.Max}.Format()),
		}
	}
	return nil
}

// OddHour flags late-night activity (23:00-05:59) at hours with no history.
func (e *Engine) OddHour(ts time.Time, hourly map[int]int) *Finding {
	hour := ts.Hour()
	if hour != 23 && hour > 5 {
		return nil
	}
	if len(hourly) == 0 || hourly[hour] > 0 {
		return nil
	}
	return &Finding{
		Type:     TypeOddHour,
		Severity: SeverityMedium,
		Hour:     hour,
		Message: fmt.Sprintf("expense recorded at %02d:00, an hour with no previous activity; make sure this transaction is intended",
			hour),
	}
}

// BurstFrequency flags an unusually high number of transactions inside the
// trailing window ending at now.
func (e *Engine) BurstFrequency(recent []core.Transaction, now time.Time) *Finding {
	windowStart := now.Add(-e.thresholds.BurstWindow)
	count := 0
	var total int64
	for _, tx := range recent {
		if !tx.Timestamp.Before(windowStart) {
			count++
			total += tx.Amount.Cents
		}
	}
	if count < e.thresholds.BurstCount {
		return nil
	}
	return &Finding{
		Type:     TypeBurstFrequency,
		Severity: SeverityMedium,
		Count:    count,
		Total:    core.Money{Cents: total},
		Message: fmt.Sprintf("%d transactions totalling %s in the last %d hours; check that they are all intended",
			count, core.Money{Cents: total}.Format(), int(e.thresholds.BurstWindow.Hours())),
	}
}

// CategoryShift compares each category's share of recent spending against its
// historical share and flags categories that jumped from a minor share to a
// dominant one. At most one finding is produced, listing every qualifying
// category.
func (e *Engine) CategoryShift(all []core.Transaction, now time.Time) *Finding {
	cutoff := now.Add(-e.thresholds.ShiftWindow)

	var recent, historical []core.Transaction
	for _, tx := range all {
		if !tx.Timestamp.Before(cutoff) {
			recent = append(recent, tx)
		} else {
			historical = append(historical, tx)
		}
	}
	if len(recent) < e.thresholds.ShiftRecentMin || len(historical) < e.thresholds.ShiftHistoryMin {
		return nil
	}

	recentShares := categoryShares(recent)
	historicalShares := categoryShares(historical)

	var changes []CategoryShiftChange
	for category, recentShare := range recentShares {
		historicalShare := historicalShares[category]
		if recentShare > e.thresholds.ShiftRecentShare && historicalShare < e.thresholds.ShiftHistoryShare {
			changes = append(changes, CategoryShiftChange{
				Category:        category,
				RecentShare:     recentShare,
				HistoricalShare: historicalShare,
			})
		}
	}
	if len(changes) == 0 {
		return nil
	}
	// Deterministic order so repeated runs produce identical findings.
	sort.Slice(changes, func(i, j int) bool { return changes[i].Category < changes[j].Category })

	msg := fmt.Sprintf("spending mix changed over the last %d days:", int(e.thresholds.ShiftWindow.Hours()/24))
	for _, ch := range changes {
		msg += fmt.Sprintf(" %s %.1f%% (usually %.1f%%);", ch.Category, ch.RecentShare, ch.HistoricalShare)
	}
	return &Finding{
		Type:     TypeCategoryShift,
		Severity: SeverityLow,
		Changes:  changes,
		Message:  msg,
	}
}

// ComprehensiveReport runs all four detectors against the historical window
// and the newly recorded transaction. The amount and odd-hour detectors need
// an established pattern profile and stay silent below the sample minimum;
// burst and category-shift findings only need the raw window and fire
// regardless. Detector panics are contained so one faulty detector cannot
// suppress the findings of the others.
func (e *Engine) ComprehensiveReport(all []core.Transaction, newTx core.Transaction, now time.Time) Report {
	patterns := profile.Analyze(all)

	report := Report{
		PatternsAnalyzed:            patterns.Enough,
		TotalHistoricalTransactions: patterns.TotalTransactions,
	}

	recent := all
	if len(recent) > recentSlice {
		recent = recent[len(recent)-recentSlice:]
	}

	detectors := []func() *Finding{
		func() *Finding {
			if !patterns.Enough {
				return nil
			}
			return e.AmountOutlier(profile.Category(newTx.Category, all), newTx.Amount)
		},
		func() *Finding {
			if !patterns.Enough {
				return nil
			}
			return e.OddHour(newTx.Timestamp, patterns.Hourly)
		},
		func() *Finding { return e.BurstFrequency(recent, now) },
		func() *Finding { return e.CategoryShift(all, now) },
	}

	for _, detect := range detectors {
		if finding := runIsolated(detect); finding != nil {
			report.Anomalies = append(report.Anomalies, *finding)
		}
	}
	report.HasAnomalies = len(report.Anomalies) > 0
	return report
}

// runIsolated converts a detector panic into "no finding".
func runIsolated(detect func() *Finding) (finding *Finding) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("anomaly detector panicked", "panic", r)
			finding = nil
		}
	}()
	return detect()
}

// categoryShares returns each category's percentage of the total spend.
func categoryShares(txs []core.Transaction) map[string]float64 {
	totals := make(map[string]int64)
	var sum int64
	for _, tx := range txs {
		totals[tx.Category] += tx.Amount.Cents
		sum += tx.Amount.Cents
	}
	shares := make(map[string]float64, len(totals))
	if sum == 0 {
		return shares
	}
	for category, cents := range totals {
		shares[category] = float64(cents) / float64(sum) * 100
	}
	return shares
}
