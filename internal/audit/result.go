package audit

import (
	"time"

	"github.com/BrightBytes/insight-cli/internal/advisory"
	"github.com/BrightBytes/insight-cli/internal/stats"
)

// Result is the immutable record of one orchestrated analysis run. It
// is created once per run, superseded (never mutated) by the next run,
// and persisted to the audits collection keyed by timestamp.
type Result struct {
	TrackID     string    `json:"track_id"`
	Timestamp   time.Time `json:"timestamp"`
	ContentHash string    `json:"content_hash"`

	ChosenX string `json:"chosen_x"`
	ChosenY string `json:"chosen_y"`

	StatisticsByColumn map[string]*stats.Record `json:"statistics_by_column"`
	MainStatistics     *stats.Record            `json:"main_statistics"`
	Correlation        float64                  `json:"correlation"`

	CategoricalAggregation []stats.CategoryTotal `json:"categorical_aggregation"`

	Deltas advisory.Deltas `json:"deltas"`

	Interpretation    advisory.Interpretation `json:"interpretation"`
	ImpactMatrix      []advisory.ImpactEntry  `json:"impact_matrix"`
	Advisory          []advisory.Entry        `json:"advisory"`
	NarrativeSections []advisory.Section      `json:"narrative_sections"`
}

// TopCategory returns the leading aggregation key, or "" when the
// aggregation is empty.
func (r *Result) TopCategory() string {
	if len(r.CategoricalAggregation) == 0 {
		return ""
	}
	return r.CategoricalAggregation[0].Key
}
