package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BrightBytes/insight-cli/internal/utils"
)

// FileStore persists each collection as one JSON file under dir,
// written atomically. Files are loaded lazily on first access and the
// parsed form is cached for the life of the store.
type FileStore struct {
	dir string

	mu     sync.Mutex
	loaded map[Collection]map[string]json.RawMessage
}

// NewFileStore creates the data directory if needed and returns a
// store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	return &FileStore{dir: dir, loaded: make(map[Collection]map[string]json.RawMessage)}, nil
}

func (f *FileStore) path(c Collection) string {
	return filepath.Join(f.dir, string(c)+".json")
}

// load returns the cached records for c, reading the backing file on
// first use. Callers must hold f.mu.
func (f *FileStore) load(c Collection) (map[string]json.RawMessage, error) {
	if recs, ok := f.loaded[c]; ok {
		return recs, nil
	}
	recs := make(map[string]json.RawMessage)
	b, err := os.ReadFile(f.path(c))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// empty collection
	case err != nil:
		return nil, fmt.Errorf("read collection %s: %w", c, err)
	default:
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, fmt.Errorf("parse collection %s: %w", c, err)
		}
	}
	f.loaded[c] = recs
	return recs, nil
}

func (f *FileStore) flush(c Collection, recs map[string]json.RawMessage) error {
	data, err := utils.PrettyJSON(recs)
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(f.path(c), data); err != nil {
		return fmt.Errorf("write collection %s: %w", c, err)
	}
	return nil
}

// Put stores record under key in collection c.
func (f *FileStore) Put(c Collection, key string, record json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs, err := f.load(c)
	if err != nil {
		return err
	}
	recs[key] = record
	return f.flush(c, recs)
}

// GetAll returns a copy of every record in collection c.
func (f *FileStore) GetAll(c Collection) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs, err := f.load(c)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(recs))
	for k, v := range recs {
		out[k] = v
	}
	return out, nil
}

// Delete removes key from collection c; deleting an absent key is a no-op.
func (f *FileStore) Delete(c Collection, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs, err := f.load(c)
	if err != nil {
		return err
	}
	if _, ok := recs[key]; !ok {
		return nil
	}
	delete(recs, key)
	return f.flush(c, recs)
}

// Clear drops every record in collection c.
func (f *FileStore) Clear(c Collection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := make(map[string]json.RawMessage)
	f.loaded[c] = recs
	return f.flush(c, recs)
}
