package cmd

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BrightBytes/insight-cli/internal/audit"
	"github.com/BrightBytes/insight-cli/internal/collection"
	"github.com/BrightBytes/insight-cli/internal/parser"
	"github.com/BrightBytes/insight-cli/internal/persist"
	"github.com/BrightBytes/insight-cli/internal/render"
)

// session wires one command invocation: persistence, the hydrated
// dataset collection, the orchestrator and the renderers.
type session struct {
	store    *persist.FileStore
	datasets *collection.Store
	orch     *audit.Orchestrator
	registry *parser.Registry
	chart    *render.Chart
}

func newSession() (*session, error) {
	store, err := persist.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	datasets := collection.NewStore(store, log)
	if err := datasets.Load(); err != nil {
		// Best-effort cache: a broken data dir should not block an
		// in-memory session.
		log.Warn("hydrate datasets failed", zap.Error(err))
	}
	orch := audit.New(datasets, store, log,
		audit.WithTimeout(time.Duration(cfg.ComputeTimeoutSec)*time.Second),
	)
	return &session{
		store:    store,
		datasets: datasets,
		orch:     orch,
		registry: parser.Default(cfg.SchemaSampleRows),
		chart:    render.NewChart(cfg.ChartTopN),
	}, nil
}
