package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BrightBytes/insight-cli/internal/advisory"
	"github.com/BrightBytes/insight-cli/internal/dataset"
	"github.com/BrightBytes/insight-cli/internal/stats"
)

// Input is everything one computation run needs. It is assembled by
// the orchestrator after validation and never shared between runs.
type Input struct {
	Rows           []dataset.Row
	NumericColumns []string
	X, Y           string

	// Prior is the main-statistics record of the most recent earlier
	// result, used for delta computation. Nil on the first run.
	Prior *stats.Record
}

// Computation executes one analysis run. The orchestrator depends only
// on this interface; Inline computes on the calling goroutine,
// Background hands the work to a worker pool and races the wait
// against the caller's deadline.
type Computation interface {
	Run(ctx context.Context, in Input) (*Result, error)
}

// Inline computes synchronously on the calling goroutine. It is both
// the simple implementation and the fallback path when the background
// computation misses its deadline.
type Inline struct{}

func (Inline) Run(_ context.Context, in Input) (*Result, error) {
	return computeResult(in)
}

// Background runs computations on a bounded worker pool. When the
// caller's context expires, Run stops waiting and returns the context
// error; the worker keeps going and its result is discarded. That
// mirrors the timeout contract: the deadline abandons the wait, it
// does not cancel the work.
type Background struct {
	sem chan struct{}
}

// NewBackground builds a pool admitting at most workers concurrent
// computations. workers <= 0 selects 1.
func NewBackground(workers int) *Background {
	if workers <= 0 {
		workers = 1
	}
	return &Background{sem: make(chan struct{}, workers)}
}

type computed struct {
	res *Result
	err error
}

func (b *Background) Run(ctx context.Context, in Input) (*Result, error) {
	out := make(chan computed, 1)
	go func() {
		b.sem <- struct{}{}
		defer func() { <-b.sem }()
		res, err := computeResult(in)
		out <- computed{res: res, err: err}
	}()
	select {
	case c := <-out:
		return c.res, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// computeResult is the single computation path shared by both
// implementations: statistics for every numeric column, correlation,
// categorical aggregation, content hash, deltas, interpretation and
// narrative.
func computeResult(in Input) (*Result, error) {
	byColumn := make(map[string]*stats.Record, len(in.NumericColumns))
	for _, col := range in.NumericColumns {
		if rec := stats.ColumnStatistics(in.Rows, col); rec != nil {
			byColumn[col] = rec
		}
	}
	main := byColumn[in.Y]
	if main == nil {
		main = stats.ColumnStatistics(in.Rows, in.Y)
	}
	if main == nil {
		return nil, &ComputationError{Err: fmt.Errorf("column %q yields no values", in.Y)}
	}
	if _, ok := byColumn[in.Y]; !ok {
		byColumn[in.Y] = main
	}

	correlation := stats.Correlation(in.Rows, in.X, in.Y)
	aggregation := stats.CategoricalAggregation(in.Rows, in.X, in.Y)

	deltas := advisory.Deltas{}
	if in.Prior != nil {
		deltas.VolumeShiftPct = shiftPct(main.Sum, in.Prior.Sum)
		deltas.PeakShiftPct = shiftPct(main.Max, in.Prior.Max)
	}

	topCategory := ""
	topTotal, groupSum := 0.0, 0.0
	if len(aggregation) > 0 {
		topCategory = aggregation[0].Key
		topTotal = aggregation[0].Total
		for _, g := range aggregation {
			groupSum += g.Total
		}
	}
	derived := advisory.Interpret(main, correlation, deltas, in.X, in.Y, topCategory, topTotal, groupSum)

	res := &Result{
		TrackID:                uuid.NewString(),
		Timestamp:              time.Now(),
		ContentHash:            stats.ContentHash(in.Rows),
		ChosenX:                in.X,
		ChosenY:                in.Y,
		StatisticsByColumn:     byColumn,
		MainStatistics:         main,
		Correlation:            correlation,
		CategoricalAggregation: aggregation,
		Deltas:                 deltas,
		Interpretation:         derived.Interpretation,
		ImpactMatrix:           derived.ImpactMatrix,
		Advisory:               derived.Advisory,
	}
	res.NarrativeSections = advisory.Narrative(main, derived, in.X, in.Y, topCategory, aggregation)
	return res, nil
}

func shiftPct(current, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return (current - prior) / prior * 100
}
