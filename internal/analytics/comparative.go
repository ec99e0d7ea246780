package analytics

import "fmt"

type ComparisonStatus string

const (
	StatusHigh   ComparisonStatus = "high"
	StatusLow    ComparisonStatus = "low"
	StatusNormal ComparisonStatus = "normal"
)

type HealthAssessment string

const (
	HealthExcellent      HealthAssessment = "excellent"
	HealthGood           HealthAssessment = "good"
	HealthFair           HealthAssessment = "fair"
	HealthNeedsAttention HealthAssessment = "needs_attention"
)

// Band is a reference share of total spending for one category, in percent.
type Band struct {
	Min, Max, Optimal float64
}

// referenceShares holds typical Indonesian household spending shares.
var referenceShares = map[string]Band{
	"Daily Needs":    {Min: 30, Max: 50, Optimal: 35},
	"Transportation": {Min: 10, Max: 20, Optimal: 15},
	"Utilities":      {Min: 8, Max: 15, Optimal: 10},
	"Entertainment":  {Min: 5, Max: 20, Optimal: 15},
	"Health":         {Min: 3, Max: 10, Optimal: 5},
	"Urgent":         {Min: 2, Max: 8, Optimal: 3},
}

type CategoryComparison struct {
	Category string
	Share    float64
	Band     Band
	Status   ComparisonStatus
	Message  string
}

type ComparativeReport struct {
	Comparisons     []CategoryComparison
	Recommendations []string
	Assessment      HealthAssessment
}

// Comparative grades each insight category that has a reference band:
// above Max is high, below Min is low, in between normal. The overall
// assessment depends on the share of high categories: none is excellent,
// up to 20% good, up to 40% fair, beyond that needs_attention.
func Comparative(insights InsightsReport) ComparativeReport {
	var report ComparativeReport
	for _, cat := range insights.Categories {
		band, ok := referenceShares[cat.Category]
		if !ok {
			continue
		}
		comp := CategoryComparison{
			Category: cat.Category,
			Share:    cat.Share,
			Band:     band,
			Status:   StatusNormal,
		}
		switch {
		case cat.Share > band.Max:
			comp.Status = StatusHigh
			comp.Message = fmt.Sprintf("Pengeluaran %s (%.1f%%) di atas rata-rata umum (%.0f%%)",
				cat.Category, cat.Share, band.Optimal)
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("Pertimbangkan mengurangi pengeluaran %s", cat.Category))
		case cat.Share < band.Min:
			comp.Status = StatusLow
			comp.Message = fmt.Sprintf("Pengeluaran %s (%.1f%%) di bawah rata-rata umum (%.0f%%)",
				cat.Category, cat.Share, band.Optimal)
		default:
			comp.Message = fmt.Sprintf("Pengeluaran %s (%.1f%%) dalam range normal",
				cat.Category, cat.Share)
		}
		report.Comparisons = append(report.Comparisons, comp)
	}
	report.Assessment = assess(report.Comparisons)
	return report
}

func assess(comparisons []CategoryComparison) HealthAssessment {
	if len(comparisons) == 0 {
		return HealthExcellent
	}
	high := 0
	for _, c := range comparisons {
		if c.Status == StatusHigh {
			high++
		}
	}
	total := float64(len(comparisons))
	switch {
	case high == 0:
		return HealthExcellent
	case float64(high) <= total*0.2:
		return HealthGood
	case float64(high) <= total*0.4:
		return HealthFair
	default:
		return HealthNeedsAttention
	}
}
