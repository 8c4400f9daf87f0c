package service

import (
	"sort"

	"receiptvault/internal/domain"
)

// ============================================================
// Report aggregator — filtered sums over the receipt set
// ============================================================

// Aggregate filters records and derives every series the report views
// need. Pure function over an immutable snapshot: records are never
// mutated and identical input always yields identical output.
func Aggregate(records []domain.Receipt, filter domain.ReportFilter) domain.AggregateResult {
	filtered := applyFilter(records, filter)

	return domain.AggregateResult{
		MonthlyTotals:     monthlyTotals(filtered),
		CategoryTotals:    categoryTotals(filtered, keepAll),
		IncomeByCategory:  categoryTotals(filtered, keepIncome),
		ExpenseByCategory: categoryTotals(filtered, keepExpense),
	}
}

// applyFilter narrows the record set. Time filters are mutually exclusive:
// a selected month wins and any custom range is ignored. The category
// filter is independent and applied after.
func applyFilter(records []domain.Receipt, filter domain.ReportFilter) []domain.Receipt {
	out := make([]domain.Receipt, 0, len(records))

	for _, r := range records {
		switch {
		case filter.HasMonth():
			// Dateless records can never match a month selection.
			if !r.HasDate() || r.Date.Format("2006-01") != filter.Month {
				continue
			}
		case filter.HasRange():
			if !r.HasDate() || r.Date.Before(filter.From) || r.Date.After(filter.To) {
				continue
			}
		}

		if filter.HasCategory() && r.EffectiveCategory() != filter.Category {
			continue
		}

		out = append(out, r)
	}

	return out
}

// monthlyTotals groups by zero-padded "YYYY-MM" key and sums amounts.
// Records without a usable date are silently dropped here; they still
// count in the category groupings. Keys come back sorted ascending,
// which for zero-padded keys equals chronological order.
func monthlyTotals(records []domain.Receipt) []domain.MonthTotal {
	sums := make(map[string]float64)
	for _, r := range records {
		if !r.HasDate() {
			continue
		}
		sums[r.Date.Format("2006-01")] += r.Amount
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	totals := make([]domain.MonthTotal, 0, len(keys))
	for _, k := range keys {
		totals = append(totals, domain.MonthTotal{Month: k, Total: sums[k]})
	}
	return totals
}

func keepAll(domain.Receipt) bool       { return true }
func keepIncome(r domain.Receipt) bool  { return r.Amount > 0 }
func keepExpense(r domain.Receipt) bool { return r.Amount < 0 }

// categoryTotals groups by category (missing → "other") and sums signed
// amounts for the records the keep predicate admits. Expense values keep
// their original negative sign.
func categoryTotals(records []domain.Receipt, keep func(domain.Receipt) bool) map[string]float64 {
	sums := make(map[string]float64)
	for _, r := range records {
		if !keep(r) {
			continue
		}
		sums[r.EffectiveCategory()] += r.Amount
	}
	return sums
}

// BuildCategorySeries derives the comparative bar view from category
// totals: one series per category, holding its value only at its own
// index and zero elsewhere, so every category is an independently
// togglable legend entry instead of a stacked series. Categories are
// ordered by key for a stable layout; labels outside the fixed tax set
// pass through with their raw stored value.
func BuildCategorySeries(totals map[string]float64) ([]string, []domain.CategorySeries) {
	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	labels := make([]string, len(keys))
	series := make([]domain.CategorySeries, len(keys))
	for i, k := range keys {
		labels[i] = domain.CategoryLabel(k)

		values := make([]float64, len(keys))
		values[i] = totals[k]
		series[i] = domain.CategorySeries{Label: labels[i], Values: values}
	}
	return labels, series
}
