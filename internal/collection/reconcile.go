package collection

import (
	"encoding/json"

	"github.com/BrightBytes/insight-cli/internal/dataset"
	"github.com/BrightBytes/insight-cli/internal/stats"
)

// Summary reconciles the loaded datasets into union/intersection header
// views and an estimated in-memory footprint.
type Summary struct {
	AllHeaders        []string                  `json:"all_headers"`
	SharedHeaders     []string                  `json:"shared_headers"`
	TotalRows         int                       `json:"total_rows"`
	EstimatedMemoryMB float64                   `json:"estimated_memory_mb"`
	SchemasByID       map[string]dataset.Schema `json:"schemas_by_id"`
}

// Reconcile computes the cross-dataset summary. SharedHeaders keeps the
// first dataset's header order; AllHeaders appends later datasets'
// novel headers after the first dataset's. The memory estimate is a
// serialized-size heuristic, not an allocator measurement.
func (s *Store) Reconcile() Summary {
	sets := s.Datasets()
	sum := Summary{SchemasByID: make(map[string]dataset.Schema, len(sets))}
	if len(sets) == 0 {
		return sum
	}

	seen := make(map[string]struct{})
	for _, d := range sets {
		for _, h := range d.Headers {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			sum.AllHeaders = append(sum.AllHeaders, h)
		}
		sum.TotalRows += len(d.Rows)
		sum.SchemasByID[d.ID] = d.Schema
		if b, err := json.Marshal(d.Rows); err == nil {
			sum.EstimatedMemoryMB += float64(len(b)) / (1024 * 1024)
		}
	}

	for _, h := range sets[0].Headers {
		shared := true
		for _, d := range sets[1:] {
			if !containsHeader(d.Headers, h) {
				shared = false
				break
			}
		}
		if shared {
			sum.SharedHeaders = append(sum.SharedHeaders, h)
		}
	}
	return sum
}

// Candidates are the suggested coordinate columns for the next audit.
type Candidates struct {
	X string `json:"x"`
	Y string `json:"y"`
	Z string `json:"z"`
}

// candidateSampleRows bounds the variance sampling for the Y pick.
const candidateSampleRows = 100

// CoordinateCandidates proposes a coordinate mapping from the most
// recent dataset: X is the first temporal column, else the first
// categorical one, else the first header; Y is the numeric column with
// the largest variance over the first 100 rows (ties keep the first
// encountered); Z is any other numeric column.
func (s *Store) CoordinateCandidates() Candidates {
	d := s.MostRecent()
	if d == nil {
		return Candidates{}
	}

	var c Candidates
	switch {
	case len(d.Schema.Temporal) > 0:
		c.X = d.Schema.Temporal[0]
	case len(d.Schema.Categorical) > 0:
		c.X = d.Schema.Categorical[0]
	case len(d.Headers) > 0:
		c.X = d.Headers[0]
	}

	sample := d.Rows
	if len(sample) > candidateSampleRows {
		sample = sample[:candidateSampleRows]
	}
	best := -1.0
	for _, col := range d.Schema.Numerical {
		rec := stats.ColumnStatistics(sample, col)
		if rec == nil {
			continue
		}
		if rec.Variance > best {
			best = rec.Variance
			c.Y = col
		}
	}
	for _, col := range d.Schema.Numerical {
		if col != c.Y {
			c.Z = col
			break
		}
	}
	return c
}

func containsHeader(headers []string, h string) bool {
	for _, v := range headers {
		if v == h {
			return true
		}
	}
	return false
}
