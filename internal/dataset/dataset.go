package dataset

import (
	"strings"
	"time"
)

// Row maps a column name to its raw cell value. Values are always
// trimmed strings; typed interpretation happens at analysis time.
type Row map[string]string

// Schema partitions a dataset's headers into the three column classes
// discovery recognizes. A header appears in exactly one class.
type Schema struct {
	Numerical   []string `json:"numerical"`
	Categorical []string `json:"categorical"`
	Temporal    []string `json:"temporal"`
}

// Meta carries ingestion bookkeeping for a dataset.
type Meta struct {
	SizeBytes  int64     `json:"size_bytes,omitempty"`
	RowCount   int       `json:"row_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Dataset is one ingested tabular file: normalized rows, the ordered
// header list, the discovered schema and a content fingerprint used
// for change detection between analysis runs.
type Dataset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Rows        []Row    `json:"rows"`
	Headers     []string `json:"headers"`
	Schema      Schema   `json:"schema"`
	ContentHash string   `json:"content_hash"`
	Meta        Meta     `json:"meta"`
}

// Normalize trims every value and drops rows that are entirely empty
// after trimming. Keys not present in headers are discarded so the
// row-keys-subset-of-headers invariant holds.
func Normalize(rows []Row, headers []string) []Row {
	keep := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		keep[h] = struct{}{}
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		nr := make(Row, len(r))
		empty := true
		for k, v := range r {
			if _, ok := keep[k]; !ok {
				continue
			}
			v = strings.TrimSpace(v)
			nr[k] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		out = append(out, nr)
	}
	return out
}
