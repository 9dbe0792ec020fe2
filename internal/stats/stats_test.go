package stats_test

import (
	"math"
	"testing"

	"github.com/BrightBytes/insight-cli/internal/dataset"
	"github.com/BrightBytes/insight-cli/internal/stats"
)

func rowsFromValues(col string, values ...string) []dataset.Row {
	rows := make([]dataset.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, dataset.Row{col: v})
	}
	return rows
}

func TestColumnStatisticsBasics(t *testing.T) {
	rows := rowsFromValues("revenue", "10", "20", "30", "40")
	rec := stats.ColumnStatistics(rows, "revenue")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Count != 4 {
		t.Fatalf("count = %d, want 4", rec.Count)
	}
	if rec.Sum != 100 || rec.Mean != 25 {
		t.Fatalf("sum/mean = %v/%v, want 100/25", rec.Sum, rec.Mean)
	}
	if rec.Median != 25 {
		t.Fatalf("even-length median = %v, want 25", rec.Median)
	}
	if rec.Min != 10 || rec.Max != 40 || rec.Range != 30 {
		t.Fatalf("min/max/range = %v/%v/%v", rec.Min, rec.Max, rec.Range)
	}
	if rec.Min > rec.Median || rec.Median > rec.Max {
		t.Fatal("median must sit between min and max")
	}
	if rec.StdDev < 0 {
		t.Fatal("stddev must be non-negative")
	}
	if math.Abs(rec.StdDev*rec.StdDev-rec.Variance) > 1e-9 {
		t.Fatalf("variance %v is not stddev squared", rec.Variance)
	}
}

func TestColumnStatisticsOddMedian(t *testing.T) {
	rec := stats.ColumnStatistics(rowsFromValues("v", "3", "1", "2"), "v")
	if rec.Median != 2 {
		t.Fatalf("odd-length median = %v, want 2", rec.Median)
	}
}

func TestColumnStatisticsNilWhenColumnAbsent(t *testing.T) {
	rows := rowsFromValues("other", "1", "2")
	if rec := stats.ColumnStatistics(rows, "missing"); rec != nil {
		t.Fatalf("expected nil for a column absent from every row, got %+v", rec)
	}
	if rec := stats.ColumnStatistics(nil, "v"); rec != nil {
		t.Fatal("expected nil for an empty row set")
	}
}

// Unparseable cells coerce to 0: they inflate count but not sum. This
// is a deliberate carry-over; see dataset.Coerce.
func TestColumnStatisticsZeroCoercionQuirk(t *testing.T) {
	rows := rowsFromValues("v", "10", "not-a-number", "20")
	rec := stats.ColumnStatistics(rows, "v")
	if rec.Count != 3 {
		t.Fatalf("count = %d, want 3 (coerced zero still counts)", rec.Count)
	}
	if rec.Sum != 30 {
		t.Fatalf("sum = %v, want 30 (coerced zero adds nothing)", rec.Sum)
	}
	if rec.Min != 0 {
		t.Fatalf("min = %v, want 0 from the coerced cell", rec.Min)
	}
}

func TestColumnStatisticsStripsCurrencyNoise(t *testing.T) {
	rows := rowsFromValues("v", "$1,200.50", "€300", " 99 ")
	rec := stats.ColumnStatistics(rows, "v")
	if math.Abs(rec.Sum-(1200.5+300+99)) > 1e-9 {
		t.Fatalf("sum = %v after stripping non-numeric characters", rec.Sum)
	}
}

func TestCorrelationPerfectAndSymmetric(t *testing.T) {
	rows := []dataset.Row{
		{"x": "1", "y": "2"},
		{"x": "2", "y": "4"},
		{"x": "3", "y": "6"},
		{"x": "4", "y": "8"},
	}
	r := stats.Correlation(rows, "x", "y")
	if math.Abs(r-1) > 1e-9 {
		t.Fatalf("correlation = %v, want 1", r)
	}
	if got := stats.Correlation(rows, "y", "x"); got != r {
		t.Fatalf("correlation not symmetric: %v vs %v", r, got)
	}
}

func TestCorrelationGuards(t *testing.T) {
	if r := stats.Correlation(rowsFromValues("x", "5"), "x", "x"); r != 0 {
		t.Fatalf("fewer than 2 rows must yield 0, got %v", r)
	}
	constant := []dataset.Row{
		{"x": "7", "y": "1"},
		{"x": "7", "y": "2"},
		{"x": "7", "y": "3"},
	}
	if r := stats.Correlation(constant, "x", "y"); r != 0 {
		t.Fatalf("zero-variance column must yield 0, got %v", r)
	}
}

func TestCategoricalAggregation(t *testing.T) {
	rows := []dataset.Row{
		{"region": "East", "revenue": "10"},
		{"region": "West", "revenue": "30"},
		{"region": "East", "revenue": "15"},
		{"region": "", "revenue": "100"},
		{"region": "NULL", "revenue": "100"},
		{"region": "North", "revenue": "5"},
	}
	agg := stats.CategoricalAggregation(rows, "region", "revenue")
	if len(agg) != 3 {
		t.Fatalf("got %d groups, want 3 (empty and null keys excluded)", len(agg))
	}
	for i := 1; i < len(agg); i++ {
		if agg[i].Total > agg[i-1].Total {
			t.Fatal("aggregation must be sorted descending by total")
		}
	}
	if agg[0].Key != "West" || agg[0].Total != 30 {
		t.Fatalf("head = %+v, want West/30", agg[0])
	}
	var total float64
	for _, g := range agg {
		total += g.Total
	}
	if total != 60 {
		t.Fatalf("included totals sum to %v, want 60 (excluded rows contribute nothing)", total)
	}
}

func TestCategoricalAggregationTieKeepsEncounterOrder(t *testing.T) {
	rows := []dataset.Row{
		{"c": "b", "v": "10"},
		{"c": "a", "v": "10"},
	}
	agg := stats.CategoricalAggregation(rows, "c", "v")
	if agg[0].Key != "b" || agg[1].Key != "a" {
		t.Fatalf("tie order changed: %+v", agg)
	}
}

func TestContentHashStableAndSensitive(t *testing.T) {
	rows := []dataset.Row{
		{"a": "1", "b": "x"},
		{"a": "2", "b": "y"},
	}
	h1 := stats.ContentHash(rows)
	h2 := stats.ContentHash(rows)
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %s vs %s", h1, h2)
	}
	changed := []dataset.Row{
		{"a": "1", "b": "x"},
		{"a": "2", "b": "z"},
	}
	if stats.ContentHash(changed) == h1 {
		t.Fatal("hash did not react to a changed cell")
	}
	if len(h1) != 8 {
		t.Fatalf("hash %q is not a 32-bit hex token", h1)
	}
}
