package render

import (
	"bytes"
	"fmt"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/BrightBytes/insight-cli/internal/audit"
	"github.com/BrightBytes/insight-cli/internal/dataset"
)

// Renderer consumes a finished analysis result plus the working row
// set and produces visual output. The chart snapshot feeds the export
// flow.
type Renderer interface {
	Render(res *audit.Result, rows []dataset.Row) error
	ChartSnapshot() ([]byte, bool)
}

// Chart renders the categorical aggregation as a PNG bar chart and
// keeps the last snapshot for export.
type Chart struct {
	topN int

	mu       sync.Mutex
	snapshot []byte
}

// NewChart caps the drawn categories at topN (<= 0 selects 8).
func NewChart(topN int) *Chart {
	if topN <= 0 {
		topN = 8
	}
	return &Chart{topN: topN}
}

// Render draws the top categories of the aggregation. A result with an
// empty aggregation clears the snapshot rather than erroring; the
// export completeness check reports the absence.
func (c *Chart) Render(res *audit.Result, _ []dataset.Row) error {
	agg := res.CategoricalAggregation
	if len(agg) == 0 {
		c.mu.Lock()
		c.snapshot = nil
		c.mu.Unlock()
		return nil
	}
	if len(agg) > c.topN {
		agg = agg[:c.topN]
	}

	bars := make([]chart.Value, 0, len(agg))
	minV, maxV := 0.0, 0.0
	for _, g := range agg {
		bars = append(bars, chart.Value{Label: g.Key, Value: g.Total})
		if g.Total < minV {
			minV = g.Total
		}
		if g.Total > maxV {
			maxV = g.Total
		}
	}
	// go-chart refuses a zero y-range, which a single-group aggregation
	// produces. Anchor the axis at zero and pad degenerate ranges.
	if maxV <= minV {
		maxV = minV + 1
	}
	bc := chart.BarChart{
		Title:      fmt.Sprintf("%s by %s", res.ChosenY, res.ChosenX),
		Width:      1024,
		Height:     512,
		BarWidth:   60,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: minV, Max: maxV},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	c.mu.Lock()
	c.snapshot = buf.Bytes()
	c.mu.Unlock()
	return nil
}

// ChartSnapshot returns the last rendered PNG, if any.
func (c *Chart) ChartSnapshot() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snapshot) == 0 {
		return nil, false
	}
	out := make([]byte, len(c.snapshot))
	copy(out, c.snapshot)
	return out, true
}
