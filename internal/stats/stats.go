package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/BrightBytes/insight-cli/internal/dataset"
)

// Record holds the descriptive statistics for one numeric column over
// a working row set.
type Record struct {
	Count    int     `json:"count"`
	Sum      float64 `json:"sum"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
}

// ColumnStatistics computes the full descriptive record for column over
// rows. It returns nil when the column yields no values at all (absent
// from every row). Cells present but unparseable coerce to 0 and still
// count; see dataset.Coerce for the rationale.
func ColumnStatistics(rows []dataset.Row, column string) *Record {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		v, ok := r[column]
		if !ok {
			continue
		}
		values = append(values, dataset.Coerce(v))
	}
	if len(values) == 0 {
		return nil
	}

	rec := &Record{Count: len(values), Min: values[0], Max: values[0]}
	for _, v := range values {
		rec.Sum += v
		if v < rec.Min {
			rec.Min = v
		}
		if v > rec.Max {
			rec.Max = v
		}
	}
	rec.Mean = rec.Sum / float64(len(values))

	for _, v := range values {
		d := v - rec.Mean
		rec.Variance += d * d
	}
	rec.Variance /= float64(len(values))
	rec.StdDev = math.Sqrt(rec.Variance)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		rec.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		rec.Median = sorted[mid]
	}

	rec.Range = rec.Max - rec.Min
	return rec
}

// Correlation computes the Pearson product-moment correlation between
// two columns using the sum-of-products formula. It returns 0 for fewer
// than 2 rows and whenever either column has zero variance, never a
// division error.
func Correlation(rows []dataset.Row, colX, colY string) float64 {
	n := len(rows)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXX, sumYY, sumXY float64
	for _, r := range rows {
		x := dataset.Coerce(r[colX])
		y := dataset.Coerce(r[colY])
		sumX += x
		sumY += y
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}
	fn := float64(n)
	denom := math.Sqrt((fn*sumXX - sumX*sumX) * (fn*sumYY - sumY*sumY))
	if denom == 0 || math.IsNaN(denom) {
		return 0
	}
	r := (fn*sumXY - sumX*sumY) / denom
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// CategoryTotal is one aggregated group: the category key and the sum
// of the metric over its rows.
type CategoryTotal struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
}

// CategoricalAggregation groups rows by the trimmed category value,
// sums the coerced metric per group and sorts descending by sum. Rows
// whose key is empty or "null" (case-insensitive) are excluded
// entirely. Ties keep encounter order.
func CategoricalAggregation(rows []dataset.Row, categoryCol, metricCol string) []CategoryTotal {
	totals := make(map[string]float64)
	var order []string
	for _, r := range rows {
		key := strings.TrimSpace(r[categoryCol])
		if key == "" || strings.EqualFold(key, "null") {
			continue
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += dataset.Coerce(r[metricCol])
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, k := range order {
		out = append(out, CategoryTotal{Key: k, Total: totals[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}
