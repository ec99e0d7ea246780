package anomaly

import "duit/internal/core"

type (
	Type     string
	Severity string
)

const (
	TypeAmountOutlier  Type = "amount_outlier"
	TypeOddHour        Type = "odd_hour"
	TypeBurstFrequency Type = "burst_frequency"
	TypeCategoryShift  Type = "category_shift"
)

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// CategoryShiftChange records one category whose share of spending moved
// between the recent window and the historical baseline.
type CategoryShiftChange struct {
	Category        string
	RecentShare     float64 // percent of recent spending
	HistoricalShare float64 // percent of historical spending
}

// Finding is one detector result. Evidence fields are populated per type:
// ZScore/Factor for amount outliers, Hour for odd-hour findings, Count and
// Total for bursts, Changes for category shifts.
type Finding struct {
	Type     Type
	Severity Severity
	Category string
	Message  string

	ZScore  float64
	Factor  float64
	Hour    int
	Count   int
	Total   core.Money
	Changes []CategoryShiftChange
}

// Report is the composite result of running all detectors after one new
// transaction.
type Report struct {
	HasAnomalies                bool
	Anomalies                   []Finding
	PatternsAnalyzed            bool
	TotalHistoricalTransactions int
}
