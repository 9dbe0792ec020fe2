package collection

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/BrightBytes/insight-cli/internal/dataset"
	"github.com/BrightBytes/insight-cli/internal/persist"
)

// Mode selects how the datasets in the store combine into one working
// row set.
type Mode string

const (
	// ModeSingle uses only the most recently added dataset.
	ModeSingle Mode = "single"
	// ModeUnion concatenates every dataset's rows in insertion order.
	ModeUnion Mode = "union"
	// ModeCompare currently behaves like ModeSingle.
	ModeCompare Mode = "compare"
)

// ParseMode validates a mode string from config or flags.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingle, ModeUnion, ModeCompare:
		return Mode(s), nil
	case "":
		return ModeSingle, nil
	}
	return "", fmt.Errorf("unknown combination mode %q (want single, union or compare)", s)
}

// Store is the in-memory dataset collection. It is the source of truth
// for the running session; the persistence collaborator is a
// best-effort cache whose failures are logged and swallowed.
type Store struct {
	mu    sync.Mutex
	order []string
	byID  map[string]*dataset.Dataset

	store persist.Store // may be nil
	log   *zap.Logger
}

// NewStore returns an empty collection backed by p. Either argument
// may be nil.
func NewStore(p persist.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{byID: make(map[string]*dataset.Dataset), store: p, log: log}
}

// Load hydrates the collection from the persisted datasets collection,
// ordered by ingestion time so insertion order survives restarts.
func (s *Store) Load() error {
	if s.store == nil {
		return nil
	}
	recs, err := s.store.GetAll(persist.Datasets)
	if err != nil {
		return fmt.Errorf("load datasets: %w", err)
	}
	loaded := make([]*dataset.Dataset, 0, len(recs))
	for key, raw := range recs {
		var d dataset.Dataset
		if err := json.Unmarshal(raw, &d); err != nil {
			s.log.Warn("skipping unreadable persisted dataset", zap.String("id", key), zap.Error(err))
			continue
		}
		loaded = append(loaded, &d)
	}
	sort.Slice(loaded, func(i, j int) bool {
		return loaded[i].Meta.IngestedAt.Before(loaded[j].Meta.IngestedAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range loaded {
		if _, ok := s.byID[d.ID]; ok {
			continue
		}
		s.order = append(s.order, d.ID)
		s.byID[d.ID] = d
	}
	return nil
}

// Add inserts the dataset and propagates it to the persistence
// collaborator. A persistence failure never corrupts the in-memory
// collection.
func (s *Store) Add(d *dataset.Dataset) {
	s.mu.Lock()
	if _, ok := s.byID[d.ID]; !ok {
		s.order = append(s.order, d.ID)
	}
	s.byID[d.ID] = d
	s.mu.Unlock()

	if s.store != nil {
		if err := persist.PutValue(s.store, persist.Datasets, d.ID, d); err != nil {
			s.log.Warn("persist dataset failed, keeping in-memory copy", zap.String("id", d.ID), zap.Error(err))
		}
	}
}

// Remove deletes the dataset by id and reports whether it was present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	_, ok := s.byID[id]
	if ok {
		delete(s.byID, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if ok && s.store != nil {
		if err := s.store.Delete(persist.Datasets, id); err != nil {
			s.log.Warn("remove persisted dataset failed", zap.String("id", id), zap.Error(err))
		}
	}
	return ok
}

// Len reports the number of datasets held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Datasets returns the datasets in insertion order.
func (s *Store) Datasets() []*dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*dataset.Dataset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Get returns the dataset by id.
func (s *Store) Get(id string) (*dataset.Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.byID[id]
	return d, ok
}

// MostRecent returns the last dataset added, or nil when empty.
func (s *Store) MostRecent() *dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return nil
	}
	return s.byID[s.order[len(s.order)-1]]
}

// SelectWorkingSet derives the working row set for mode. The result is
// recomputed on every call and never owned by the store: single and
// compare return the most recent dataset's rows, union concatenates all
// datasets' rows in insertion order.
func (s *Store) SelectWorkingSet(mode Mode) []dataset.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return nil
	}
	switch mode {
	case ModeUnion:
		var out []dataset.Row
		for _, id := range s.order {
			out = append(out, s.byID[id].Rows...)
		}
		return out
	default: // single, compare
		recent := s.byID[s.order[len(s.order)-1]]
		out := make([]dataset.Row, len(recent.Rows))
		copy(out, recent.Rows)
		return out
	}
}
