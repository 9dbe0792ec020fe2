package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BrightBytes/insight-cli/internal/dataset"
	"github.com/BrightBytes/insight-cli/internal/stats"
)

// Decoder turns a file on disk into the raw header record plus
// positional data records. Column naming happens after header cleanup,
// so a renamed header keeps its column's values.
type Decoder interface {
	CanDecode(filename string) bool
	Decode(path string) (headers []string, records [][]string, err error)
}

// Registry holds the available decoders and the schema-discovery
// sample depth. Construct one per session; there is no package-level
// registry state.
type Registry struct {
	decoders   []Decoder
	sampleRows int
}

// NewRegistry builds a registry over the given decoders. sampleRows <= 0
// selects dataset.DefaultSampleRows.
func NewRegistry(sampleRows int, decoders ...Decoder) *Registry {
	if sampleRows <= 0 {
		sampleRows = dataset.DefaultSampleRows
	}
	return &Registry{decoders: decoders, sampleRows: sampleRows}
}

// Default returns a registry with the CSV/TSV and XLSX decoders.
func Default(sampleRows int) *Registry {
	return NewRegistry(sampleRows, csvDecoder{}, xlsxDecoder{})
}

// ParseFile decodes, normalizes and classifies one file into a Dataset.
// It fails with a *DependencyError when the file is a known tabular
// format but its decoder is not registered, and with
// dataset.ErrNotAnalyzable when the discovered schema cannot support an
// X/Y analysis.
func (r *Registry) ParseFile(path string) (*dataset.Dataset, error) {
	var dec Decoder
	for _, d := range r.decoders {
		if d.CanDecode(path) {
			dec = d
			break
		}
	}
	if dec == nil {
		if f, known := tabularFormat(path); known {
			return nil, &DependencyError{Format: f}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}

	rawHeaders, records, err := dec.Decode(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	headers := cleanHeaders(rawHeaders)
	if len(headers) == 0 {
		return nil, fmt.Errorf("decode %s: no headers detected", filepath.Base(path))
	}
	rows := make([]dataset.Row, 0, len(records))
	for _, rec := range records {
		row := make(dataset.Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	rows = dataset.Normalize(rows, headers)

	schema := dataset.Discover(headers, rows, r.sampleRows)
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	d := &dataset.Dataset{
		ID:          uuid.NewString(),
		Name:        filepath.Base(path),
		Rows:        rows,
		Headers:     headers,
		Schema:      schema,
		ContentHash: stats.ContentHash(rows),
		Meta: dataset.Meta{
			RowCount:   len(rows),
			IngestedAt: time.Now(),
		},
	}
	if info, err := os.Stat(path); err == nil {
		d.Meta.SizeBytes = info.Size()
	}
	return d, nil
}

// tabularFormat reports whether the extension belongs to a format the
// tool understands at all, so a missing decoder is reported as a
// dependency problem rather than an unsupported file.
func tabularFormat(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return "delimited-text", true
	case ".xlsx":
		return "spreadsheet", true
	}
	return "", false
}

// cleanHeaders trims header names, names blank ones positionally and
// dedupes repeats with a numeric suffix so the unique-headers invariant
// holds.
func cleanHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			h = fmt.Sprintf("%s_%d", h, n+1)
		}
		if _, ok := seen[h]; !ok {
			seen[h] = 1
		}
		out = append(out, h)
	}
	return out
}
