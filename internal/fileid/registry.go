// Package fileid implements the global FileId registry spec.md §9 describes
// as an external collaborator: a process-wide bijection between absolute
// path and 32-bit id, tolerant of concurrent reads from indexer workers.
//
// spec.md treats this as "external" to the indexing core, but ships no
// implementation of its own; this package provides a concrete one so the
// module is runnable end to end. It is grounded on the lookup/composite-id
// conventions in the teacher's internal/idcodec package, persisted through
// the same internal/store table layer the rest of the core uses (so it
// benefits from the same WriteScope atomicity, and best-effort retry on
// save failure per spec.md §7).
package fileid

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/types"
)

// Registry is the process-wide path<->FileID bijection.
type Registry struct {
	mu      sync.RWMutex
	byPath  map[string]types.FileID
	byID    map[types.FileID]string
	nextID  types.FileID
	general *store.Table
}

const registryKey = "fileid_registry"

// New creates an empty registry backed by general (typically the project's
// General table, so Save/Load share the project database).
func New(general *store.Table) *Registry {
	return &Registry{
		byPath:  make(map[string]types.FileID),
		byID:    make(map[types.FileID]string),
		nextID:  1,
		general: general,
	}
}

// FileID returns the id for path, or (0, false) if unregistered.
func (r *Registry) FileID(path string) (types.FileID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPath[path]
	return id, ok
}

// Path returns the path for id, or ("", false) if unknown.
func (r *Registry) Path(id types.FileID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// InsertFile assigns a new id to path if it has none yet, and returns the
// (possibly pre-existing) id.
func (r *Registry) InsertFile(path string) types.FileID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byPath[path]; ok {
		return id
	}
	id := r.nextID
	r.nextID++
	r.byPath[path] = id
	r.byID[id] = path
	return id
}

type registryWire struct {
	NextID uint32            `json:"next_id"`
	Paths  map[uint32]string `json:"paths"`
}

func encodeWire(w registryWire) []byte {
	v, err := json.Marshal(w)
	if err != nil {
		panic(fmt.Sprintf("fileid: marshal registry: %v", err))
	}
	return v
}

func decodeWire(v []byte) (registryWire, error) {
	var w registryWire
	if err := json.Unmarshal(v, &w); err != nil {
		return registryWire{}, fmt.Errorf("fileid: unmarshal registry: %w", err)
	}
	return w, nil
}

// Save persists the registry, retrying a small, bounded number of times
// with a short back-off on failure (spec.md §7, "best-effort").
func (r *Registry) Save() error {
	r.mu.RLock()
	w := registryWire{NextID: uint32(r.nextID), Paths: make(map[uint32]string, len(r.byID))}
	for id, p := range r.byID {
		w.Paths[uint32(id)] = p
	}
	r.mu.RUnlock()

	const maxAttempts = 3
	backoff := 20 * time.Millisecond
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = r.general.Set([]byte(registryKey), encodeWire(w)); err == nil {
			return nil
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return fmt.Errorf("fileid: save failed after %d attempts: %w", maxAttempts, err)
}

// Load restores the registry from its persisted General row, if any.
func (r *Registry) Load() error {
	v, ok, err := r.general.Find([]byte(registryKey))
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	w, err := decodeWire(v)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID = types.FileID(w.NextID)
	r.byPath = make(map[string]types.FileID, len(w.Paths))
	r.byID = make(map[types.FileID]string, len(w.Paths))
	for id, p := range w.Paths {
		r.byID[types.FileID(id)] = p
		r.byPath[p] = types.FileID(id)
	}
	return nil
}
