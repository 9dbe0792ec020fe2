package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BrightBytes/insight-cli/internal/collection"
	"github.com/BrightBytes/insight-cli/internal/dataset"
	"github.com/BrightBytes/insight-cli/internal/persist"
	"github.com/BrightBytes/insight-cli/internal/stats"
)

// State is the orchestrator's per-run state machine position.
type State string

const (
	StateIdle       State = "IDLE"
	StateValidating State = "VALIDATING"
	StateBlocked    State = "BLOCKED"
	StateComputing  State = "COMPUTING"
	StateRendered   State = "RENDERED"
)

// DefaultComputeTimeout bounds the background computation wait before
// the orchestrator falls back to synchronous execution.
const DefaultComputeTimeout = 10 * time.Second

// historyConsulted caps how many past results the delta window keeps
// in mind; storage itself is unbounded.
const historyConsulted = 5

// lastMappingKey is the config-collection key holding the most recent
// successful coordinate mapping.
const lastMappingKey = "last_mapping"

// Request names the coordinate mapping and combination mode for one
// audit trigger.
type Request struct {
	X    string          `json:"x"`
	Y    string          `json:"y"`
	Mode collection.Mode `json:"mode"`
}

// Orchestrator coordinates validation, computation, persistence and
// history for analysis runs. All session state lives here; construct
// one per session so tests can run several independently in-process.
type Orchestrator struct {
	collection *collection.Store
	store      persist.Store // may be nil
	computer   Computation
	fallback   Inline
	timeout    time.Duration
	log        *zap.Logger

	// runMu serializes audit triggers; refreshPending is the
	// single-slot latest-wins queue for triggers that arrive while a
	// run is in flight.
	runMu          sync.Mutex
	refreshPending atomic.Bool

	mu            sync.Mutex
	state         State
	lastRequest   *Request
	history       []*Result
	historyLoaded bool
}

// Option tweaks orchestrator construction.
type Option func(*Orchestrator)

// WithTimeout overrides the background-computation timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithComputation overrides the computation implementation.
func WithComputation(c Computation) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.computer = c
		}
	}
}

// New builds an orchestrator over the dataset collection and the
// persistence collaborator. store may be nil for a purely in-memory
// session.
func New(col *collection.Store, store persist.Store, log *zap.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{
		collection: col,
		store:      store,
		computer:   NewBackground(1),
		timeout:    DefaultComputeTimeout,
		log:        log,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current state-machine position.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.log.Debug("audit state", zap.String("state", string(s)))
}

// Run executes one orchestrated audit. Triggers are serialized;
// exactly one Result is produced per successful trigger regardless of
// whether the background or the fallback path completes it.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	res, err := o.run(ctx, req)
	if err != nil {
		return nil, err
	}
	// Latest-wins: a refresh that arrived mid-run re-executes once
	// against the same mapping.
	if o.refreshPending.Swap(false) {
		if r2, err2 := o.run(ctx, req); err2 == nil {
			res = r2
		} else {
			o.log.Warn("coalesced refresh failed", zap.Error(err2))
		}
	}
	return res, nil
}

// Refresh is the periodic live-refresh trigger: it re-runs the last
// mapping silently. When a run is already in flight it parks in the
// single pending slot instead of racing it. Failures are logged and
// swallowed, never surfaced.
func (o *Orchestrator) Refresh(ctx context.Context) {
	o.mu.Lock()
	req := o.lastRequest
	o.mu.Unlock()
	if req == nil || o.collection.Len() == 0 {
		return
	}
	if !o.runMu.TryLock() {
		o.refreshPending.Store(true)
		return
	}
	defer o.runMu.Unlock()
	if _, err := o.run(ctx, *req); err != nil {
		o.log.Warn("live refresh failed", zap.Error(err))
	}
}

// Watch re-triggers computation on every tick until ctx is cancelled.
func (o *Orchestrator) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			o.Refresh(ctx)
		}
	}
}

// run is the single-trigger pipeline: VALIDATING -> (BLOCKED |
// COMPUTING) -> RENDERED. Callers hold runMu.
func (o *Orchestrator) run(ctx context.Context, req Request) (*Result, error) {
	o.setState(StateValidating)
	rows, verr := o.validate(req)
	if verr != nil {
		o.setState(StateBlocked)
		return nil, verr
	}

	o.setState(StateComputing)
	in := Input{
		Rows:           rows,
		NumericColumns: o.numericColumns(req.Mode),
		X:              req.X,
		Y:              req.Y,
		Prior:          o.priorStatistics(),
	}

	runCtx, cancel := context.WithTimeout(ctx, o.timeout)
	res, err := o.computer.Run(runCtx, in)
	cancel()
	if err != nil {
		// Background path errored or timed out: recover transparently
		// with the synchronous fallback.
		o.log.Warn("background computation unavailable, computing synchronously", zap.Error(err))
		res, err = o.fallback.Run(ctx, in)
		if err != nil {
			o.setState(StateBlocked)
			return nil, err
		}
	}

	o.persistResult(res)
	o.recordResult(res, req)
	o.setState(StateRendered)
	return res, nil
}

// validate checks the trigger preconditions, returning the working row
// set on success. Each failure carries a distinct reportable reason.
func (o *Orchestrator) validate(req Request) ([]dataset.Row, *ValidationError) {
	if o.collection.Len() == 0 {
		return nil, &ValidationError{Reason: ReasonNoDataset}
	}
	if req.X == "" {
		return nil, &ValidationError{Reason: ReasonNoX}
	}
	if req.Y == "" {
		return nil, &ValidationError{Reason: ReasonNoY}
	}
	rows := o.collection.SelectWorkingSet(req.Mode)
	if len(rows) == 0 {
		return nil, &ValidationError{Reason: ReasonEmptyRows}
	}
	return rows, nil
}

// numericColumns collects the numeric columns the run should profile:
// the most recent dataset's in single/compare mode, the union across
// datasets in union mode.
func (o *Orchestrator) numericColumns(mode collection.Mode) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(cols []string) {
		for _, c := range cols {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	if mode == collection.ModeUnion {
		for _, d := range o.collection.Datasets() {
			add(d.Schema.Numerical)
		}
		return out
	}
	if d := o.collection.MostRecent(); d != nil {
		add(d.Schema.Numerical)
	}
	return out
}

// priorStatistics returns the main-statistics record of the most
// recent prior result, or nil when history is empty.
func (o *Orchestrator) priorStatistics() *stats.Record {
	hist, err := o.History()
	if err != nil {
		o.log.Warn("history unavailable for delta computation", zap.Error(err))
		return nil
	}
	if len(hist) == 0 {
		return nil
	}
	return hist[0].MainStatistics
}

// persistResult stores the result in the audits collection and the
// coordinate mapping in config. Persistence is best-effort: failures
// are logged and the in-memory run proceeds.
func (o *Orchestrator) persistResult(res *Result) {
	if o.store == nil {
		return
	}
	key := res.Timestamp.UTC().Format(time.RFC3339Nano)
	if err := persist.PutValue(o.store, persist.Audits, key, res); err != nil {
		o.log.Warn("persist audit result failed", zap.String("track_id", res.TrackID), zap.Error(err))
	}
}

// recordResult prepends the result to the in-memory history unless its
// timestamp matches the current head (a retried trigger must not
// insert twice), and remembers the mapping for live refresh.
func (o *Orchestrator) recordResult(res *Result, req Request) {
	o.mu.Lock()
	if len(o.history) == 0 || !o.history[0].Timestamp.Equal(res.Timestamp) {
		o.history = append([]*Result{res}, o.history...)
	}
	o.lastRequest = &req
	o.mu.Unlock()

	if o.store != nil {
		if err := persist.PutValue(o.store, persist.Config, lastMappingKey, req); err != nil {
			o.log.Warn("persist last mapping failed", zap.Error(err))
		}
	}
}

// History returns past results ordered newest first. It loads lazily
// from the persistence collaborator on first call and caches for the
// session lifetime. The merged slice is re-sorted on every read, so a
// result persisted by a concurrent session keeps its place regardless
// of when it was picked up.
func (o *Orchestrator) History() ([]*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.historyLoaded && o.store != nil {
		recs, err := o.store.GetAll(persist.Audits)
		if err != nil {
			return nil, fmt.Errorf("load audit history: %w", err)
		}
		seen := make(map[string]struct{}, len(o.history))
		for _, r := range o.history {
			seen[r.TrackID] = struct{}{}
		}
		for key, raw := range recs {
			var r Result
			if err := json.Unmarshal(raw, &r); err != nil {
				o.log.Warn("skipping unreadable persisted audit", zap.String("key", key), zap.Error(err))
				continue
			}
			if _, ok := seen[r.TrackID]; !ok {
				o.history = append(o.history, &r)
			}
		}
	}
	o.historyLoaded = true
	sort.SliceStable(o.history, func(i, j int) bool { return o.history[i].Timestamp.After(o.history[j].Timestamp) })
	return append([]*Result(nil), o.history...), nil
}

// Recent returns up to the consulted window of past results, newest
// first. Storage is unbounded; only this window participates in delta
// reasoning.
func (o *Orchestrator) Recent() ([]*Result, error) {
	hist, err := o.History()
	if err != nil {
		return nil, err
	}
	if len(hist) > historyConsulted {
		hist = hist[:historyConsulted]
	}
	return hist, nil
}

// ClearHistory drops the in-memory cache and the persisted audits.
func (o *Orchestrator) ClearHistory() error {
	o.mu.Lock()
	o.history = nil
	o.historyLoaded = true
	o.mu.Unlock()
	if o.store == nil {
		return nil
	}
	if err := o.store.Clear(persist.Audits); err != nil {
		return fmt.Errorf("clear audit history: %w", err)
	}
	return nil
}

// LastMapping restores the persisted coordinate mapping from the
// config collection, if any.
func (o *Orchestrator) LastMapping() (*Request, bool) {
	if o.store == nil {
		return nil, false
	}
	recs, err := o.store.GetAll(persist.Config)
	if err != nil {
		o.log.Warn("load config collection failed", zap.Error(err))
		return nil, false
	}
	raw, ok := recs[lastMappingKey]
	if !ok {
		return nil, false
	}
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		o.log.Warn("parse persisted mapping failed", zap.Error(err))
		return nil, false
	}
	return &req, true
}
