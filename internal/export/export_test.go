package export_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrightBytes/insight-cli/internal/advisory"
	"github.com/BrightBytes/insight-cli/internal/audit"
	"github.com/BrightBytes/insight-cli/internal/export"
	"github.com/BrightBytes/insight-cli/internal/stats"
)

func completeResult() *audit.Result {
	return &audit.Result{
		TrackID:     "track-1",
		Timestamp:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		ContentHash: "0a1b2c3d",
		ChosenX:     "region",
		ChosenY:     "revenue",
		MainStatistics: &stats.Record{
			Count: 6, Sum: 1000, Mean: 166.67, Median: 125, Min: 70, Max: 300, StdDev: 90,
		},
		CategoricalAggregation: []stats.CategoryTotal{{Key: "East", Total: 600}},
		ImpactMatrix: []advisory.ImpactEntry{
			{Label: "Dominance", Severity: "High", Detail: "East leads"},
		},
		Advisory: []advisory.Entry{
			{Action: advisory.ActionDiversify, Metric: "revenue", Context: "East holds 60.0%"},
		},
		NarrativeSections: []advisory.Section{
			{Title: "Executive Summary", Content: "East dominates revenue."},
		},
	}
}

var snapshot = []byte("\x89PNG fake bytes")

func TestCheckPassesOnCompleteResult(t *testing.T) {
	require.NoError(t, export.Check(completeResult(), snapshot))
}

func TestCheckReportsEachMissingPart(t *testing.T) {
	err := export.Check(nil, snapshot)
	require.ErrorIs(t, err, export.ErrIncomplete)

	cases := []struct {
		name    string
		mutate  func(*audit.Result)
		missing string
	}{
		{"narrative", func(r *audit.Result) { r.NarrativeSections = nil }, "narrative"},
		{"statistics", func(r *audit.Result) { r.MainStatistics = nil }, "statistics model"},
		{"impact", func(r *audit.Result) { r.ImpactMatrix = nil }, "impact matrix"},
		{"advisory", func(r *audit.Result) { r.Advisory = nil }, "advisory"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := completeResult()
			tc.mutate(res)
			err := export.Check(res, snapshot)
			require.ErrorIs(t, err, export.ErrIncomplete)
			assert.Contains(t, err.Error(), tc.missing)
		})
	}

	err = export.Check(completeResult(), nil)
	require.ErrorIs(t, err, export.ErrIncomplete)
	assert.Contains(t, err.Error(), "chart snapshot")
}

func TestCheckListsEveryGap(t *testing.T) {
	res := completeResult()
	res.NarrativeSections = nil
	res.Advisory = nil
	err := export.Check(res, nil)
	require.ErrorIs(t, err, export.ErrIncomplete)
	assert.Contains(t, err.Error(), "narrative")
	assert.Contains(t, err.Error(), "chart snapshot")
	assert.Contains(t, err.Error(), "advisory")
}

func TestBuildEmbedsEverything(t *testing.T) {
	html, err := export.Build(completeResult(), snapshot, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Generated 2024-03-01 09:30")
	assert.Contains(t, html, "track-1")
	assert.Contains(t, html, "region / revenue")
	assert.Contains(t, html, "Executive Summary")
	assert.Contains(t, html, "East dominates revenue.")
	assert.Contains(t, html, "DIVERSIFY")
	assert.Contains(t, html, `class="severity-High"`)
	assert.Contains(t, html, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(snapshot))
}

func TestBuildRefusesIncompleteResult(t *testing.T) {
	res := completeResult()
	res.MainStatistics = nil
	_, err := export.Build(res, snapshot, time.Now())
	require.ErrorIs(t, err, export.ErrIncomplete)
}
