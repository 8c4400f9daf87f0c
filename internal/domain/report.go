package domain

import "time"

// ============================================================
// Reporting
// ============================================================

// CategoryAll disables category filtering.
const CategoryAll = "all"

// ReportFilter narrows the receipt set before aggregation. Month and the
// custom date range are mutually exclusive: a selected month wins and the
// range is ignored. The category filter is independent and always applied.
type ReportFilter struct {
	Month    string    // "YYYY-MM", empty = unset
	From, To time.Time // inclusive custom range, both must be set to apply
	Category string    // "" or "all" = no category filter
}

// HasMonth reports whether a specific month is selected.
func (f ReportFilter) HasMonth() bool {
	return f.Month != ""
}

// HasRange reports whether a complete custom date range is set.
func (f ReportFilter) HasRange() bool {
	return !f.From.IsZero() && !f.To.IsZero()
}

// HasCategory reports whether a specific category filter is active.
func (f ReportFilter) HasCategory() bool {
	return f.Category != "" && f.Category != CategoryAll
}

// MonthTotal is one point of the monthly time series.
type MonthTotal struct {
	Month string  `json:"month"` // zero-padded "YYYY-MM"
	Total float64 `json:"total"`
}

// AggregateResult holds every derived series the report views need. It is
// recomputed in full on each filter change and never persisted.
type AggregateResult struct {
	// MonthlyTotals is sorted ascending by month key with no duplicates;
	// lexicographic order equals chronological order for zero-padded keys.
	MonthlyTotals []MonthTotal `json:"monthlyTotals"`

	// CategoryTotals sums signed amounts per category over all filtered
	// records; records without a category land in "other".
	CategoryTotals map[string]float64 `json:"categoryTotals"`

	// IncomeByCategory restricts the grouping to amount > 0.
	IncomeByCategory map[string]float64 `json:"incomeByCategory"`

	// ExpenseByCategory restricts the grouping to amount < 0; values keep
	// their original sign.
	ExpenseByCategory map[string]float64 `json:"expenseByCategory"`
}

// CategorySeries is the bar-chart derivation of CategoryTotals: one series
// per category, holding its value only at its own index and zero elsewhere,
// so each category renders as an independently togglable legend entry.
type CategorySeries struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Report is the body returned by GET /v1/reports.
type Report struct {
	AggregateResult
	CategoryLabels []string         `json:"categoryLabels"`
	BarSeries      []CategorySeries `json:"barSeries"`
}
