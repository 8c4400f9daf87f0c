package service_test

import (
	"reflect"
	"sort"
	"testing"
	"time"

	"receiptvault/internal/domain"
	"receiptvault/internal/service"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleRecords() []domain.Receipt {
	return []domain.Receipt{
		{ID: "r1", Date: day("2024-01-05"), Amount: 100, Category: "income", Type: domain.TypeIncome},
		{ID: "r2", Date: day("2024-01-12"), Amount: -40, Category: "office", Type: domain.TypeExpense},
		{ID: "r3", Date: day("2024-02-03"), Amount: -10, Category: "office", Type: domain.TypeExpense},
		{ID: "r4", Date: day("2024-02-20"), Amount: -25, Type: domain.TypeExpense}, // no category
	}
}

func TestAggregate_CategoryTotals(t *testing.T) {
	records := []domain.Receipt{
		{Amount: 100, Category: "income", Date: day("2024-03-01")},
		{Amount: -40, Category: "office", Date: day("2024-03-02")},
		{Amount: -10, Category: "office", Date: day("2024-03-03")},
	}

	result := service.Aggregate(records, domain.ReportFilter{})

	wantTotals := map[string]float64{"income": 100, "office": -50}
	if !reflect.DeepEqual(result.CategoryTotals, wantTotals) {
		t.Errorf("category totals = %v, want %v", result.CategoryTotals, wantTotals)
	}

	wantIncome := map[string]float64{"income": 100}
	if !reflect.DeepEqual(result.IncomeByCategory, wantIncome) {
		t.Errorf("income breakdown = %v, want %v", result.IncomeByCategory, wantIncome)
	}

	// Expense values keep their original sign.
	wantExpense := map[string]float64{"office": -50}
	if !reflect.DeepEqual(result.ExpenseByCategory, wantExpense) {
		t.Errorf("expense breakdown = %v, want %v", result.ExpenseByCategory, wantExpense)
	}
}

func TestAggregate_MonthlyTotalsSorted(t *testing.T) {
	result := service.Aggregate(sampleRecords(), domain.ReportFilter{})

	want := []domain.MonthTotal{
		{Month: "2024-01", Total: 60},
		{Month: "2024-02", Total: -35},
	}
	if !reflect.DeepEqual(result.MonthlyTotals, want) {
		t.Errorf("monthly totals = %v, want %v", result.MonthlyTotals, want)
	}

	keys := make([]string, 0, len(result.MonthlyTotals))
	for _, mt := range result.MonthlyTotals {
		keys = append(keys, mt.Month)
	}
	if !sort.StringsAreSorted(keys) {
		t.Errorf("month keys not sorted: %v", keys)
	}
}

func TestAggregate_MonthFilterIgnoresRange(t *testing.T) {
	// Month and range are both set; the month wins and the range, which
	// would otherwise exclude everything, is ignored.
	filter := domain.ReportFilter{
		Month: "2024-01",
		From:  day("2030-01-01"),
		To:    day("2030-12-31"),
	}

	result := service.Aggregate(sampleRecords(), filter)

	want := map[string]float64{"income": 100, "office": -40}
	if !reflect.DeepEqual(result.CategoryTotals, want) {
		t.Errorf("category totals = %v, want %v", result.CategoryTotals, want)
	}
}

func TestAggregate_RangeInclusive(t *testing.T) {
	filter := domain.ReportFilter{From: day("2024-01-12"), To: day("2024-02-03")}

	result := service.Aggregate(sampleRecords(), filter)

	// Boundary records on both ends are kept.
	want := map[string]float64{"office": -50}
	if !reflect.DeepEqual(result.CategoryTotals, want) {
		t.Errorf("category totals = %v, want %v", result.CategoryTotals, want)
	}
}

func TestAggregate_MissingCategoryIsOther(t *testing.T) {
	result := service.Aggregate(sampleRecords(), domain.ReportFilter{Category: domain.CategoryOther})

	want := map[string]float64{"other": -25}
	if !reflect.DeepEqual(result.CategoryTotals, want) {
		t.Errorf("category totals = %v, want %v", result.CategoryTotals, want)
	}
}

func TestAggregate_AllCategoryDisablesFilter(t *testing.T) {
	all := service.Aggregate(sampleRecords(), domain.ReportFilter{Category: domain.CategoryAll})
	none := service.Aggregate(sampleRecords(), domain.ReportFilter{})

	if !reflect.DeepEqual(all, none) {
		t.Errorf("category=all should equal no filter: %v vs %v", all, none)
	}
}

func TestAggregate_DatelessRecords(t *testing.T) {
	records := []domain.Receipt{
		{Amount: -30, Category: "travel", Date: day("2024-04-01")},
		{Amount: -70, Category: "travel"}, // zero date
	}

	result := service.Aggregate(records, domain.ReportFilter{})

	// The dateless record is dropped from monthly totals but still counts
	// in the category grouping.
	wantMonthly := []domain.MonthTotal{{Month: "2024-04", Total: -30}}
	if !reflect.DeepEqual(result.MonthlyTotals, wantMonthly) {
		t.Errorf("monthly totals = %v, want %v", result.MonthlyTotals, wantMonthly)
	}
	if got := result.CategoryTotals["travel"]; got != -100 {
		t.Errorf("travel total = %v, want -100", got)
	}

	// Under an active time filter a dateless record can never match.
	filtered := service.Aggregate(records, domain.ReportFilter{Month: "2024-04"})
	if got := filtered.CategoryTotals["travel"]; got != -30 {
		t.Errorf("travel total under month filter = %v, want -30", got)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	records := sampleRecords()
	filter := domain.ReportFilter{Category: "office"}

	first := service.Aggregate(records, filter)
	second := service.Aggregate(records, filter)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated aggregation differs: %v vs %v", first, second)
	}
}

func TestBuildCategorySeries(t *testing.T) {
	labels, series := service.BuildCategorySeries(map[string]float64{
		"office": -50,
		"income": 100,
		"custom": -5,
	})

	wantLabels := []string{"custom", "Income", "Office Supplies"}
	if !reflect.DeepEqual(labels, wantLabels) {
		t.Errorf("labels = %v, want %v", labels, wantLabels)
	}

	if len(series) != 3 {
		t.Fatalf("series count = %d, want 3", len(series))
	}
	// Each series carries its value only at its own index.
	wantValues := [][]float64{
		{-5, 0, 0},
		{0, 100, 0},
		{0, 0, -50},
	}
	for i, s := range series {
		if !reflect.DeepEqual(s.Values, wantValues[i]) {
			t.Errorf("series %q values = %v, want %v", s.Label, s.Values, wantValues[i])
		}
	}
}
