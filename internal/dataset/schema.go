package dataset

import (
	"errors"
	"time"
)

// DefaultSampleRows is how many leading rows Discover inspects per column.
const DefaultSampleRows = 10

// ErrNotAnalyzable marks a dataset whose schema cannot support an X/Y
// coordinate analysis: no numeric column, or no categorical/temporal
// column to plot it against.
var ErrNotAnalyzable = errors.New("dataset has no usable coordinate columns")

// Discover classifies each header into numeric, temporal or categorical
// by sampling the first sampleRows rows. A column is numeric when every
// non-missing sampled value parses as a finite number after stripping
// non-numeric characters, temporal when every sampled value parses as a
// date longer than 5 characters, and categorical otherwise. Columns
// fully empty in the sample default to categorical.
func Discover(headers []string, rows []Row, sampleRows int) Schema {
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	limit := sampleRows
	if len(rows) < limit {
		limit = len(rows)
	}

	var s Schema
	for _, h := range headers {
		var sampled []string
		for i := 0; i < limit; i++ {
			v := rows[i][h]
			if v == "" {
				continue
			}
			sampled = append(sampled, v)
		}
		switch {
		case len(sampled) == 0:
			s.Categorical = append(s.Categorical, h)
		case allNumeric(sampled):
			s.Numerical = append(s.Numerical, h)
		case allTemporal(sampled):
			s.Temporal = append(s.Temporal, h)
		default:
			s.Categorical = append(s.Categorical, h)
		}
	}
	return s
}

// Validate enforces the acceptance rule: a dataset needs at least one
// numeric column and at least one categorical or temporal column.
func (s Schema) Validate() error {
	if len(s.Numerical) == 0 {
		return ErrNotAnalyzable
	}
	if len(s.Categorical) == 0 && len(s.Temporal) == 0 {
		return ErrNotAnalyzable
	}
	return nil
}

func allNumeric(values []string) bool {
	for _, v := range values {
		if _, ok := ParseNumeric(v); !ok {
			return false
		}
	}
	return true
}

func allTemporal(values []string) bool {
	for _, v := range values {
		if len(v) <= 5 {
			return false
		}
		if _, ok := ParseDate(v); !ok {
			return false
		}
	}
	return true
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"Jan 2, 2006", "2 Jan 2006",
}

// ParseDate reports whether the value parses under one of the accepted
// date layouts.
func ParseDate(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
