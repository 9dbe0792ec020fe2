package audit_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrightBytes/insight-cli/internal/advisory"
	"github.com/BrightBytes/insight-cli/internal/audit"
	"github.com/BrightBytes/insight-cli/internal/collection"
	"github.com/BrightBytes/insight-cli/internal/dataset"
	"github.com/BrightBytes/insight-cli/internal/persist"
)

func salesDataset(id string, ingestedAt time.Time, revenues map[string][]float64) *dataset.Dataset {
	var rows []dataset.Row
	day := 1
	for _, region := range []string{"East", "West", "North"} {
		for _, v := range revenues[region] {
			rows = append(rows, dataset.Row{
				"region":  region,
				"date":    "2024-01-" + pad(day),
				"revenue": strconv.FormatFloat(v, 'f', -1, 64),
			})
			day++
		}
	}
	return &dataset.Dataset{
		ID:      id,
		Name:    id + ".csv",
		Rows:    rows,
		Headers: []string{"region", "date", "revenue"},
		Schema: dataset.Schema{
			Numerical:   []string{"revenue"},
			Categorical: []string{"region"},
			Temporal:    []string{"date"},
		},
		Meta: dataset.Meta{RowCount: len(rows), IngestedAt: ingestedAt},
	}
}

func pad(d int) string {
	if d < 10 {
		return "0" + strconv.Itoa(d)
	}
	return strconv.Itoa(d)
}

// eastHeavy holds 60% of total revenue in East: 600 of 1000.
func eastHeavy(id string, at time.Time) *dataset.Dataset {
	return salesDataset(id, at, map[string][]float64{
		"East":  {300, 300},
		"West":  {150, 100},
		"North": {80, 70},
	})
}

func newOrchestrator(t *testing.T, sets ...*dataset.Dataset) (*audit.Orchestrator, *collection.Store) {
	t.Helper()
	col := collection.NewStore(nil, nil)
	for _, d := range sets {
		col.Add(d)
	}
	return audit.New(col, nil, nil), col
}

func hasAction(entries []advisory.Entry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

func TestValidationReasons(t *testing.T) {
	req := audit.Request{X: "region", Y: "revenue"}

	empty, _ := newOrchestrator(t)
	_, err := empty.Run(context.Background(), req)
	requireBlocked(t, err, audit.ReasonNoDataset)
	assert.Equal(t, audit.StateBlocked, empty.State())

	o, _ := newOrchestrator(t, eastHeavy("d", time.Now()))
	_, err = o.Run(context.Background(), audit.Request{Y: "revenue"})
	requireBlocked(t, err, audit.ReasonNoX)

	_, err = o.Run(context.Background(), audit.Request{X: "region"})
	requireBlocked(t, err, audit.ReasonNoY)

	bare := salesDataset("bare", time.Now(), nil)
	o2, _ := newOrchestrator(t, bare)
	_, err = o2.Run(context.Background(), req)
	requireBlocked(t, err, audit.ReasonEmptyRows)
}

func requireBlocked(t *testing.T, err error, reason string) {
	t.Helper()
	var verr *audit.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, reason, verr.Reason)
}

func TestEndToEndRegionalConcentration(t *testing.T) {
	o, _ := newOrchestrator(t, eastHeavy("sales", time.Now()))

	res, err := o.Run(context.Background(), audit.Request{X: "region", Y: "revenue"})
	require.NoError(t, err)
	assert.Equal(t, audit.StateRendered, o.State())

	require.NotNil(t, res.MainStatistics)
	assert.InDelta(t, 1000, res.MainStatistics.Sum, 1e-9)
	assert.InDelta(t, 60, res.Interpretation.ConcentrationPct, 1e-9)
	assert.Equal(t, "Highly Concentrated", res.Interpretation.OperationalState)
	assert.Equal(t, "Critical Dependency", res.Interpretation.ConcentrationRisk)
	assert.Equal(t, "East", res.TopCategory())

	require.True(t, hasAction(res.Advisory, advisory.ActionDiversify))
	assert.Contains(t, res.Advisory[0].Context, "East")

	assert.Contains(t, res.StatisticsByColumn, "revenue")
	assert.Len(t, res.ContentHash, 8)
	assert.NotEmpty(t, res.TrackID)
	assert.Len(t, res.ImpactMatrix, 3)
	assert.Len(t, res.NarrativeSections, 4)
}

func TestConcentrationIgnoresExcludedKeys(t *testing.T) {
	// Rows keyed "" or "NULL" leave the aggregation entirely, including
	// the denominator: East holds all of the remaining 30, so the
	// ratio is 100% even though the column sums to 100.
	rows := []dataset.Row{
		{"region": "East", "revenue": "30"},
		{"region": "NULL", "revenue": "40"},
		{"region": "", "revenue": "30"},
	}
	d := &dataset.Dataset{
		ID:      "nulls",
		Name:    "nulls.csv",
		Rows:    rows,
		Headers: []string{"region", "revenue"},
		Schema:  dataset.Schema{Numerical: []string{"revenue"}, Categorical: []string{"region"}},
		Meta:    dataset.Meta{RowCount: len(rows), IngestedAt: time.Now()},
	}
	o, _ := newOrchestrator(t, d)

	res, err := o.Run(context.Background(), audit.Request{X: "region", Y: "revenue"})
	require.NoError(t, err)
	assert.InDelta(t, 100, res.Interpretation.ConcentrationPct, 1e-9)
	assert.Equal(t, "Highly Concentrated", res.Interpretation.OperationalState)
	assert.True(t, hasAction(res.Advisory, advisory.ActionDiversify))
	// The statistics themselves still cover every row.
	assert.InDelta(t, 100, res.MainStatistics.Sum, 1e-9)
}

func TestRepeatedRunsAreDeterministic(t *testing.T) {
	o, _ := newOrchestrator(t, eastHeavy("sales", time.Now()))
	req := audit.Request{X: "region", Y: "revenue"}

	first, err := o.Run(context.Background(), req)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := o.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, first.MainStatistics, second.MainStatistics)
	assert.Equal(t, first.CategoricalAggregation, second.CategoricalAggregation)
	assert.NotEqual(t, first.TrackID, second.TrackID)
	assert.True(t, second.Timestamp.After(first.Timestamp))
}

// stuckComputation never finishes on its own; it only honors the
// deadline, standing in for a wedged background worker.
type stuckComputation struct{}

func (stuckComputation) Run(ctx context.Context, _ audit.Input) (*audit.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeoutFallsBackToSynchronous(t *testing.T) {
	col := collection.NewStore(nil, nil)
	col.Add(eastHeavy("sales", time.Now()))
	o := audit.New(col, nil, nil,
		audit.WithComputation(stuckComputation{}),
		audit.WithTimeout(5*time.Millisecond))

	res, err := o.Run(context.Background(), audit.Request{X: "region", Y: "revenue"})
	require.NoError(t, err)
	assert.InDelta(t, 60, res.Interpretation.ConcentrationPct, 1e-9)
	assert.Equal(t, audit.StateRendered, o.State())
}

// brokenComputation fails outright, exercising the error (not timeout)
// recovery path.
type brokenComputation struct{}

func (brokenComputation) Run(context.Context, audit.Input) (*audit.Result, error) {
	return nil, errors.New("worker crashed")
}

func TestComputationErrorFallsBackToSynchronous(t *testing.T) {
	col := collection.NewStore(nil, nil)
	col.Add(eastHeavy("sales", time.Now()))
	o := audit.New(col, nil, nil, audit.WithComputation(brokenComputation{}))

	res, err := o.Run(context.Background(), audit.Request{X: "region", Y: "revenue"})
	require.NoError(t, err)
	require.NotNil(t, res.MainStatistics)
}

func TestDeltasAgainstPriorRun(t *testing.T) {
	base := eastHeavy("jan", time.Now().Add(-time.Hour))
	o, col := newOrchestrator(t, base)
	req := audit.Request{X: "region", Y: "revenue"}

	first, err := o.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, first.Deltas.VolumeShiftPct)
	assert.Contains(t, first.Interpretation.StabilityAssessment, "Steady")

	// Next month's file totals 1200: +20% against the prior run's 1000.
	col.Add(salesDataset("feb", time.Now(), map[string][]float64{
		"East":  {400},
		"West":  {400},
		"North": {400},
	}))
	second, err := o.Run(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 20, second.Deltas.VolumeShiftPct, 1e-9)
	assert.Contains(t, second.Interpretation.StabilityAssessment, "Volatile")
	assert.True(t, hasAction(second.Advisory, advisory.ActionMonitor))
}

func TestHistoryPersistsAcrossSessions(t *testing.T) {
	dir := t.TempDir()
	store, err := persist.NewFileStore(dir)
	require.NoError(t, err)
	col := collection.NewStore(nil, nil)
	col.Add(eastHeavy("sales", time.Now()))
	req := audit.Request{X: "region", Y: "revenue", Mode: collection.ModeSingle}

	o := audit.New(col, store, nil)
	res, err := o.Run(context.Background(), req)
	require.NoError(t, err)

	// A fresh orchestrator over the same store sees the stored run.
	store2, err := persist.NewFileStore(dir)
	require.NoError(t, err)
	o2 := audit.New(col, store2, nil)
	hist, err := o2.History()
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, res.TrackID, hist[0].TrackID)
	assert.Equal(t, res.ContentHash, hist[0].ContentHash)
	assert.Equal(t, "East", hist[0].TopCategory())

	restored, ok := o2.LastMapping()
	require.True(t, ok)
	assert.Equal(t, req, *restored)
}

func TestHistoryOrdersConcurrentWriterResults(t *testing.T) {
	store, err := persist.NewFileStore(t.TempDir())
	require.NoError(t, err)
	col := collection.NewStore(nil, nil)
	col.Add(eastHeavy("sales", time.Now()))
	o := audit.New(col, store, nil)

	// Another session persisted a result newer than anything this
	// session has produced.
	other := &audit.Result{
		TrackID:     "other-session",
		Timestamp:   time.Now().Add(time.Hour),
		ContentHash: "deadbeef",
		ChosenX:     "region",
		ChosenY:     "revenue",
	}
	key := other.Timestamp.UTC().Format(time.RFC3339Nano)
	require.NoError(t, persist.PutValue(store, persist.Audits, key, other))

	_, err = o.Run(context.Background(), audit.Request{X: "region", Y: "revenue"})
	require.NoError(t, err)

	hist, err := o.History()
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "other-session", hist[0].TrackID, "newest result must lead regardless of which session wrote it")
}

func TestHistoryOrderAndRecentWindow(t *testing.T) {
	o, _ := newOrchestrator(t, eastHeavy("sales", time.Now()))
	req := audit.Request{X: "region", Y: "revenue"}
	for i := 0; i < 7; i++ {
		_, err := o.Run(context.Background(), req)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	hist, err := o.History()
	require.NoError(t, err)
	require.Len(t, hist, 7)
	for i := 1; i < len(hist); i++ {
		assert.True(t, hist[i-1].Timestamp.After(hist[i].Timestamp), "history must be newest first")
	}

	recent, err := o.Recent()
	require.NoError(t, err)
	assert.Len(t, recent, 5)
	assert.Equal(t, hist[0].TrackID, recent[0].TrackID)
}

func TestClearHistory(t *testing.T) {
	store, err := persist.NewFileStore(t.TempDir())
	require.NoError(t, err)
	col := collection.NewStore(nil, nil)
	col.Add(eastHeavy("sales", time.Now()))
	o := audit.New(col, store, nil)

	_, err = o.Run(context.Background(), audit.Request{X: "region", Y: "revenue"})
	require.NoError(t, err)
	require.NoError(t, o.ClearHistory())

	hist, err := o.History()
	require.NoError(t, err)
	assert.Empty(t, hist)
	recs, err := store.GetAll(persist.Audits)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRefreshWithoutPriorRunIsNoop(t *testing.T) {
	o, _ := newOrchestrator(t, eastHeavy("sales", time.Now()))
	o.Refresh(context.Background())

	hist, err := o.History()
	require.NoError(t, err)
	assert.Empty(t, hist)
	assert.Equal(t, audit.StateIdle, o.State())
}

func TestRefreshReusesLastMapping(t *testing.T) {
	o, _ := newOrchestrator(t, eastHeavy("sales", time.Now()))
	_, err := o.Run(context.Background(), audit.Request{X: "region", Y: "revenue"})
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	o.Refresh(context.Background())
	hist, err := o.History()
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "revenue", hist[0].ChosenY)
}

func TestUnionModeProfilesAllNumericColumns(t *testing.T) {
	a := eastHeavy("a", time.Now().Add(-time.Hour))
	b := salesDataset("b", time.Now(), map[string][]float64{"East": {10}})
	b.Headers = append(b.Headers, "units")
	b.Schema.Numerical = append(b.Schema.Numerical, "units")
	for i := range b.Rows {
		b.Rows[i]["units"] = "5"
	}

	o, _ := newOrchestrator(t, a, b)
	res, err := o.Run(context.Background(), audit.Request{X: "region", Y: "revenue", Mode: collection.ModeUnion})
	require.NoError(t, err)
	assert.Contains(t, res.StatisticsByColumn, "revenue")
	assert.Contains(t, res.StatisticsByColumn, "units")
	// 7 rows from both files combined.
	assert.Equal(t, 7, res.MainStatistics.Count)
}
