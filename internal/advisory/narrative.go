package advisory

import (
	"fmt"
	"strings"

	"github.com/BrightBytes/insight-cli/internal/stats"
)

// Section is one titled block of the report narrative.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Narrative composes the ordered report sections from one run's
// metrics and its interpretation.
func Narrative(rec *stats.Record, res Result, labelX, labelY, topCategory string, aggregation []stats.CategoryTotal) []Section {
	var sections []Section

	exec := fmt.Sprintf(
		"This audit examined %d records of %s across %s. Total volume is %.2f with a mean of %.2f per record. The operational state is %s.",
		rec.Count, labelY, labelX, rec.Sum, rec.Mean, strings.ToLower(res.Interpretation.OperationalState),
	)
	if topCategory != "" {
		exec += fmt.Sprintf(" The leading %s is %q at %.1f%% of total volume.", labelX, topCategory, res.Interpretation.ConcentrationPct)
	}
	sections = append(sections, Section{Title: "Executive Summary", Content: exec})

	profile := fmt.Sprintf(
		"%s ranges from %.2f to %.2f (spread %.2f), with median %.2f and standard deviation %.2f.",
		labelY, rec.Min, rec.Max, rec.Range, rec.Median, rec.StdDev,
	)
	if len(aggregation) > 1 {
		profile += fmt.Sprintf(" %d distinct %s groups were aggregated.", len(aggregation), labelX)
	}
	sections = append(sections, Section{Title: "Statistical Profile", Content: profile})

	interp := fmt.Sprintf("%s. %s. %s.",
		res.Interpretation.ConcentrationRisk,
		res.Interpretation.StabilityAssessment,
		res.Interpretation.EfficiencyObservation,
	)
	sections = append(sections, Section{Title: "Interpretation", Content: interp})

	var b strings.Builder
	for i, a := range res.Advisory {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s %s: %s.", a.Action, a.Metric, a.Context)
	}
	sections = append(sections, Section{Title: "Advisory", Content: b.String()})

	return sections
}
