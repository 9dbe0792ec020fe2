package persist

import (
	"encoding/json"
)

// Collection names the three record stores the tool persists into.
type Collection string

const (
	Datasets Collection = "datasets"
	Audits   Collection = "audits"
	Config   Collection = "config"
)

// Store is the persistence collaborator: a keyed record cache per
// collection. Datasets are keyed by id, audits by timestamp, config by
// key. The in-memory session state is the source of truth; a Store is
// best-effort and its failures are logged, never propagated into the
// operation they accompanied.
type Store interface {
	Put(c Collection, key string, record json.RawMessage) error
	GetAll(c Collection) (map[string]json.RawMessage, error)
	Delete(c Collection, key string) error
	Clear(c Collection) error
}

// PutValue marshals record and stores it under key.
func PutValue(s Store, c Collection, key string, record any) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.Put(c, key, b)
}
