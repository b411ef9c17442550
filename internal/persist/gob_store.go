package persist

import (
	"encoding/gob"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// GobStore is the flat single-file Store backend: every Put overwrites
// the whole file with the current in-memory table, gob-encoded. It
// mirrors the teacher's DBManager in shape only (one mutex-guarded map
// behind Put/Get/Close) — there is no connection to manage, since a
// gob file has no server process to dial.
type GobStore struct {
	mu   sync.RWMutex
	path string
	rows map[string]*Snapshot
}

// OpenGobStore loads path if it exists, or starts empty if it does not
// (a fresh classpath has no prior run to reuse).
func OpenGobStore(path string) (*GobStore, error) {
	g := &GobStore{path: path, rows: map[string]*Snapshot{}}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return g, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "persist: open %s", path)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&g.rows); err != nil {
		return nil, errors.Wrapf(err, "persist: decode %s", path)
	}
	return g, nil
}

func (g *GobStore) Put(key string, snap *Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rows[key] = snap
	return g.flushLocked()
}

func (g *GobStore) Get(key string) (*Snapshot, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap, ok := g.rows[key]
	return snap, ok, nil
}

func (g *GobStore) Close() error { return nil }

// flushLocked rewrites the whole file; callers must hold g.mu.
func (g *GobStore) flushLocked() error {
	f, err := os.Create(g.path)
	if err != nil {
		return errors.Wrapf(err, "persist: create %s", g.path)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(g.rows); err != nil {
		return errors.Wrapf(err, "persist: encode %s", g.path)
	}
	return nil
}
