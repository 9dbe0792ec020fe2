package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/BrightBytes/insight-cli/internal/audit"
)

// WriteText renders a compact terminal report of one analysis result.
func WriteText(w io.Writer, res *audit.Result) {
	var b strings.Builder
	b.WriteString("[AUDIT RESULT]\n")
	fmt.Fprintf(&b, "Track: %s\n", res.TrackID)
	fmt.Fprintf(&b, "When: %s\n", res.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Mapping: X=%s Y=%s\n", res.ChosenX, res.ChosenY)
	fmt.Fprintf(&b, "Fingerprint: %s\n\n", res.ContentHash)

	s := res.MainStatistics
	b.WriteString("[STATISTICS]\n")
	fmt.Fprintf(&b, "- count %d, sum %.2f, mean %.2f, median %.2f\n", s.Count, s.Sum, s.Mean, s.Median)
	fmt.Fprintf(&b, "- min %.2f, max %.2f, range %.2f, stddev %.2f\n", s.Min, s.Max, s.Range, s.StdDev)
	fmt.Fprintf(&b, "- correlation(%s, %s) = %.3f\n", res.ChosenX, res.ChosenY, res.Correlation)
	if res.Deltas.VolumeShiftPct != 0 || res.Deltas.PeakShiftPct != 0 {
		fmt.Fprintf(&b, "- vs previous audit: volume %+.1f%%, peak %+.1f%%\n", res.Deltas.VolumeShiftPct, res.Deltas.PeakShiftPct)
	}

	if len(res.CategoricalAggregation) > 0 {
		b.WriteString("\n[TOP GROUPS]\n")
		limit := 8
		if len(res.CategoricalAggregation) < limit {
			limit = len(res.CategoricalAggregation)
		}
		for i := 0; i < limit; i++ {
			g := res.CategoricalAggregation[i]
			fmt.Fprintf(&b, "- %s: %.2f\n", g.Key, g.Total)
		}
	}

	b.WriteString("\n[IMPACT]\n")
	for _, e := range res.ImpactMatrix {
		fmt.Fprintf(&b, "- %s [%s]: %s\n", e.Label, e.Severity, e.Detail)
	}

	b.WriteString("\n[ADVISORY]\n")
	for _, a := range res.Advisory {
		fmt.Fprintf(&b, "- %s %s: %s\n", a.Action, a.Metric, a.Context)
	}

	b.WriteString("\n")
	for _, sec := range res.NarrativeSections {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", strings.ToUpper(sec.Title), sec.Content)
	}
	io.WriteString(w, b.String())
}
