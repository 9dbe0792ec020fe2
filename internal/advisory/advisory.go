package advisory

import (
	"fmt"
	"math"

	"github.com/BrightBytes/insight-cli/internal/stats"
)

// Action verbs an advisory entry can carry.
const (
	ActionDiversify = "DIVERSIFY"
	ActionMonitor   = "MONITOR"
	ActionReduce    = "REDUCE"
	ActionMaintain  = "MAINTAIN"
)

// Deltas are the percentage shifts of the current run against the most
// recent prior result. Both are 0 when there is no prior.
type Deltas struct {
	VolumeShiftPct float64 `json:"volume_shift_pct"`
	PeakShiftPct   float64 `json:"peak_shift_pct"`
}

// Interpretation labels the operational state derived from the metrics.
type Interpretation struct {
	OperationalState      string  `json:"operational_state"`
	ConcentrationRisk     string  `json:"concentration_risk"`
	StabilityAssessment   string  `json:"stability_assessment"`
	EfficiencyObservation string  `json:"efficiency_observation"`
	ConcentrationPct      float64 `json:"concentration_pct"`
}

// ImpactEntry is one row of the fixed three-dimension impact matrix.
type ImpactEntry struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
	Trigger  string `json:"trigger"`
}

// Entry is one prioritized recommendation.
type Entry struct {
	Action  string `json:"action"`
	Metric  string `json:"metric"`
	Context string `json:"context"`
}

// Result bundles everything Interpret derives from one run's metrics.
type Result struct {
	Interpretation Interpretation `json:"interpretation"`
	ImpactMatrix   []ImpactEntry  `json:"impact_matrix"`
	Advisory       []Entry        `json:"advisory"`
}

// Interpret converts statistics, correlation and prior-run deltas into
// operational-state labels, the three-dimension impact matrix and the
// prioritized advisory list. It is a pure function; the thresholds are
// contractual and asserted literally by the test suite.
//
// topTotal is the aggregated value of the leading category and
// groupSum the sum over every included group; rows with excluded keys
// contribute to neither side of the concentration ratio. Pass zeros
// when no categorical aggregation was computable and the record's peak
// and sum stand in.
func Interpret(rec *stats.Record, correlation float64, deltas Deltas, labelX, labelY, topCategory string, topTotal, groupSum float64) Result {
	peak := topTotal
	if peak <= 0 {
		peak = rec.Max
	}
	denom := groupSum
	if denom <= 0 {
		denom = rec.Sum
	}
	if denom == 0 {
		denom = 1
	}
	concentration := peak / denom * 100

	mean := rec.Mean
	if mean == 0 {
		mean = 1
	}
	dispersion := rec.StdDev / mean

	interp := Interpretation{ConcentrationPct: concentration}
	if concentration > 50 {
		interp.OperationalState = "Highly Concentrated"
	} else {
		interp.OperationalState = "Balanced"
	}
	if concentration > 40 {
		interp.ConcentrationRisk = "Critical Dependency"
	} else {
		interp.ConcentrationRisk = "Stable Diversification"
	}
	if math.Abs(deltas.VolumeShiftPct) < 10 {
		interp.StabilityAssessment = fmt.Sprintf("Steady volume (%.1f%% shift since last audit)", deltas.VolumeShiftPct)
	} else {
		interp.StabilityAssessment = fmt.Sprintf("Volatile volume (%.1f%% shift since last audit)", deltas.VolumeShiftPct)
	}
	if dispersion < 0.5 {
		interp.EfficiencyObservation = fmt.Sprintf("Precise distribution of %s (dispersion %.2f)", labelY, dispersion)
	} else {
		interp.EfficiencyObservation = fmt.Sprintf("Dispersed distribution of %s (dispersion %.2f)", labelY, dispersion)
	}

	impact := []ImpactEntry{
		dominanceImpact(rec, labelX, topCategory),
		stabilityImpact(dispersion, labelY),
		relationalImpact(correlation, labelX, labelY),
	}

	var advice []Entry
	if concentration > 40 {
		advice = append(advice, Entry{
			Action:  ActionDiversify,
			Metric:  labelY,
			Context: fmt.Sprintf("%.1f%% of total %s sits in %q; broaden the %s base to reduce dependency", concentration, labelY, topCategory, labelX),
		})
	}
	if math.Abs(deltas.VolumeShiftPct) > 15 {
		advice = append(advice, Entry{
			Action:  ActionMonitor,
			Metric:  labelY,
			Context: fmt.Sprintf("total %s moved %.1f%% since the previous audit; watch for a sustained trend", labelY, deltas.VolumeShiftPct),
		})
	}
	if dispersion > 1.2 {
		advice = append(advice, Entry{
			Action:  ActionReduce,
			Metric:  labelY,
			Context: fmt.Sprintf("dispersion of %s is %.2f; reduce variance drivers across %s", labelY, dispersion, labelX),
		})
	}
	if len(advice) == 0 {
		advice = append(advice, Entry{
			Action:  ActionMaintain,
			Metric:  labelY,
			Context: "no threshold breached; maintain the current baseline and re-audit on the next cycle",
		})
	}

	return Result{Interpretation: interp, ImpactMatrix: impact, Advisory: advice}
}

func dominanceImpact(rec *stats.Record, labelX, topCategory string) ImpactEntry {
	severity := "Medium"
	if rec.Max > rec.Mean*5 {
		severity = "High"
	}
	return ImpactEntry{
		Label:    "Dominance",
		Severity: severity,
		Detail:   fmt.Sprintf("peak value %.2f against mean %.2f; leading %s is %q", rec.Max, rec.Mean, labelX, topCategory),
		Trigger:  "concentration > 40%",
	}
}

func stabilityImpact(dispersion float64, labelY string) ImpactEntry {
	severity := "Stable"
	if math.Abs(dispersion) > 0.8 {
		severity = "Critical"
	}
	return ImpactEntry{
		Label:    "Stability",
		Severity: severity,
		Detail:   fmt.Sprintf("relative dispersion of %s is %.2f", labelY, dispersion),
		Trigger:  "variance within threshold",
	}
}

func relationalImpact(correlation float64, labelX, labelY string) ImpactEntry {
	severity := "Weak"
	if math.Abs(correlation) > 0.7 {
		severity = "Critical"
	}
	return ImpactEntry{
		Label:    "Relational lock",
		Severity: severity,
		Detail:   fmt.Sprintf("correlation between %s and %s is %.3f", labelX, labelY, correlation),
		Trigger:  "correlation > 0.7",
	}
}
