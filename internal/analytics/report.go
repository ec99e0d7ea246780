package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"duit/internal/core"
)

// Composer renders the plain-text bodies sent to the presentation
// collaborator. The text is final as rendered here; downstream only delivers
// it.
type Composer struct{}

func NewComposer() *Composer { return &Composer{} }

// MonthlyInsightsReport composes the full monthly analysis: summary, top
// categories, spending patterns, trend, velocity and recommendations.
// Sections with insufficient data are omitted.
func (c *Composer) MonthlyInsightsReport(txs []core.Transaction, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Laporan Analisis Pengeluaran %s\n\n", now.Format("January 2006"))

	insights, insightsOK := CategoryInsights(txs, 30, now)
	if insightsOK {
		fmt.Fprintf(&b, "Total Pengeluaran: %s\n", insights.TotalSpending.Format())
		fmt.Fprintf(&b, "Jumlah Transaksi: %d\n", insights.TotalTransactions)
		fmt.Fprintf(&b, "Rata-rata per Hari: %s\n\n", core.Money{Cents: int64(insights.DailyAverage)}.Format())

		b.WriteString("Kategori Pengeluaran Terbesar:\n")
		for i, cat := range insights.Categories {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "%d. %s: %s (%.1f%%)\n", i+1, cat.Category, cat.Total.Format(), cat.Share)
		}
		b.WriteString("\n")

		b.WriteString("Pola Pengeluaran:\n")
		for i, cat := range insights.Categories {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", cat.Category, patternLabel(cat.Pattern))
		}
		b.WriteString("\n")
	}

	if trends, ok := MonthlyTrends(txs, 6, now); ok {
		fmt.Fprintf(&b, "Tren Pengeluaran: %s\n", trendLabel(trends.Trend))
		fmt.Fprintf(&b, "Rata-rata bulanan: %s\n\n", trends.AverageMonthly.Format())
	}

	if velocity, ok := Velocity(txs); ok {
		fmt.Fprintf(&b, "Kecepatan Pengeluaran: %s\n", velocityLabel(velocity.Pattern))
		fmt.Fprintf(&b, "Rata-rata jarak antar transaksi: %.1f jam\n", velocity.AverageGap.Hours())
		if len(velocity.Bursts) > 0 {
			fmt.Fprintf(&b, "Terdeteksi %d periode pengeluaran intensif\n", len(velocity.Bursts))
		}
		b.WriteString("\n")
	}

	if insightsOK {
		comparison := Comparative(insights)
		if len(comparison.Recommendations) > 0 {
			b.WriteString("Rekomendasi:\n")
			for i, rec := range comparison.Recommendations {
				if i >= 3 {
					break
				}
				fmt.Fprintf(&b, "- %s\n", rec)
			}
			fmt.Fprintf(&b, "\nStatus Keuangan: %s\n", assessmentLabel(comparison.Assessment))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// DailySummary composes the end-of-day recap: total, per-category breakdown
// sorted by amount, and any budget warnings for the day. Returns ok=false
// when the day holds no transactions.
func (c *Composer) DailySummary(txs []core.Transaction, budgetWarnings []string) (string, bool) {
	if len(txs) == 0 {
		return "", false
	}
	var total int64
	byCategory := map[string]int64{}
	for _, tx := range txs {
		total += tx.Amount.Cents
		byCategory[tx.Category] += tx.Amount.Cents
	}

	type catAmount struct {
		category string
		cents    int64
	}
	cats := make([]catAmount, 0, len(byCategory))
	for cat, cents := range byCategory {
		cats = append(cats, catAmount{cat, cents})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].cents != cats[j].cents {
			return cats[i].cents > cats[j].cents
		}
		return cats[i].category < cats[j].category
	})

	var b strings.Builder
	b.WriteString("Ringkasan Hari Ini\n\n")
	fmt.Fprintf(&b, "Total pengeluaran: %s\n", core.Money{Cents: total}.Format())
	fmt.Fprintf(&b, "Jumlah transaksi: %d\n\n", len(txs))
	b.WriteString("Per Kategori:\n")
	for _, ca := range cats {
		fmt.Fprintf(&b, "- %s: %s\n", ca.category, core.Money{Cents: ca.cents}.Format())
	}
	if len(budgetWarnings) > 0 {
		b.WriteString("\nPeringatan Budget:\n")
		for _, w := range budgetWarnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return strings.TrimRight(b.String(), "\n"), true
}

// WeeklyReviewText renders the weekly budget review.
func (c *Composer) WeeklyReviewText(review WeeklyReview) string {
	if !review.HasBudgets {
		return "Belum ada budget yang diset. Gunakan /budget untuk mengatur budget bulanan!"
	}
	var b strings.Builder
	b.WriteString("Review Budget Mingguan\n\n")
	for _, e := range review.Entries {
		fmt.Fprintf(&b, "[%s] %s\n", reviewMark(e.Status), e.Category)
		fmt.Fprintf(&b, "   Spent: %s (%.1f%% dari target mingguan)\n", e.Spent.Format(), e.Percent)
		fmt.Fprintf(&b, "   Target mingguan: %s\n\n", e.WeeklyTarget.Format())
	}
	if len(review.Warnings) > 0 {
		b.WriteString("Peringatan:\n")
		for _, w := range review.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// BudgetSuggestionsText renders suggested monthly budget amounts, sorted by
// category name. Appended to the weekly review for users without budgets.
func (c *Composer) BudgetSuggestionsText(suggestions map[string]core.Money) string {
	if len(suggestions) == 0 {
		return ""
	}
	names := make([]string, 0, len(suggestions))
	for name := range suggestions {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Saran budget bulanan:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, suggestions[name].Format())
	}
	return strings.TrimRight(b.String(), "\n")
}

func reviewMark(s ReviewStatus) string {
	switch s {
	case ReviewExceeded:
		return "MERAH"
	case ReviewWarning:
		return "KUNING"
	default:
		return "HIJAU"
	}
}

func patternLabel(p SpendingPattern) string {
	words := strings.Split(string(p), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func trendLabel(t Trend) string {
	switch t {
	case TrendIncreasing:
		return "Naik"
	case TrendDecreasing:
		return "Turun"
	default:
		return "Stabil"
	}
}

func velocityLabel(p VelocityPattern) string {
	switch p {
	case VelocityVeryFrequent:
		return "Sangat Sering"
	case VelocityFrequent:
		return "Sering"
	case VelocityRegular:
		return "Teratur"
	default:
		return "Jarang"
	}
}

func assessmentLabel(a HealthAssessment) string {
	switch a {
	case HealthExcellent:
		return "Sangat Baik"
	case HealthGood:
		return "Baik"
	case HealthFair:
		return "Cukup"
	default:
		return "Perlu Perhatian"
	}
}
