// Package dirty implements the dirty-propagation detector family: a
// polymorphic capability deciding which Sources must be re-indexed as
// their dependencies change.
//
// Grounded on the tagged-variant shape spec.md §4.3 names directly (no
// single teacher file owns this; the teacher's front end reparses on
// every file-watch event rather than tracking staleness through an
// include graph). The lastModified-memoization and union-insert helpers
// follow the copy-on-write-under-lock idiom in the teacher's
// internal/indexing/deleted_file_tracker.go, adapted from a swappable
// immutable snapshot to a plain mutex because the detector's working set
// needs read-modify-write, not atomic replace.
package dirty

import (
	"os"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codegraph/xrefd/internal/types"
)

// DependencyLookup resolves the Dependencies table in both directions:
// forward (a header's dependent TUs, spec.md's DependsOnArg) and reverse
// (a TU's depended-on headers, spec.md's ArgDependsOn). Backed by
// internal/tables.Tables in production.
type DependencyLookup interface {
	// GetDependents returns every TU fileId whose translation unit
	// transitively includes header.
	GetDependents(header types.FileID) (map[types.FileID]struct{}, error)
	// HeadersDependedOnBy returns every header fileId that tu's
	// translation unit transitively includes (the ArgDependsOn scan).
	HeadersDependedOnBy(tu types.FileID) (map[types.FileID]struct{}, error)
}

// PathLookup resolves a fileId back to an absolute path, for stat()-ing
// and for glob matching against reindex() patterns.
type PathLookup interface {
	Path(fileID types.FileID) (string, bool)
}

// Dirty reports which Sources are stale.
type Dirty interface {
	// Dirtied returns every fileId known to be dirty.
	Dirtied() map[types.FileID]struct{}
	// IsDirty reports whether source itself needs re-indexing.
	IsDirty(source types.Source) bool
}

type lastModifiedCache struct {
	mu    sync.Mutex
	paths PathLookup
	cache map[types.FileID]time.Time
}

func newLastModifiedCache(paths PathLookup) *lastModifiedCache {
	return &lastModifiedCache{paths: paths, cache: make(map[types.FileID]time.Time)}
}

// lastModified returns the zero time if the file is gone, memoizing the
// result per fileId for the lifetime of this detector instance.
func (c *lastModifiedCache) lastModified(fileID types.FileID) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.cache[fileID]; ok {
		return t
	}
	var t time.Time
	if path, ok := c.paths.Path(fileID); ok {
		if info, err := os.Stat(path); err == nil {
			t = info.ModTime()
		}
	}
	c.cache[fileID] = t
	return t
}

// SimpleDirty is seeded with an explicit set of dirty fileIds and
// transitively dirties dependents via deps.
type SimpleDirty struct {
	deps    DependencyLookup
	dirtied map[types.FileID]struct{}
}

// NewSimpleDirty transitively expands seed through deps: every fileId
// that depends (directly or indirectly) on a seed member is also dirty.
func NewSimpleDirty(deps DependencyLookup, seed map[types.FileID]struct{}) (*SimpleDirty, error) {
	d := &SimpleDirty{deps: deps, dirtied: make(map[types.FileID]struct{}, len(seed))}
	queue := make([]types.FileID, 0, len(seed))
	for f := range seed {
		if insertDirtyFile(d.dirtied, f) {
			queue = append(queue, f)
		}
	}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		dependents, err := deps.GetDependents(f)
		if err != nil {
			return nil, err
		}
		for dep := range dependents {
			if insertDirtyFile(d.dirtied, dep) {
				queue = append(queue, dep)
			}
		}
	}
	return d, nil
}

func (d *SimpleDirty) Dirtied() map[types.FileID]struct{} { return d.dirtied }

func (d *SimpleDirty) IsDirty(source types.Source) bool {
	_, ok := d.dirtied[source.FileID]
	return ok
}

// SuspendedDirty reports nothing dirty: used when the whole project is
// suspended from automatic re-indexing.
type SuspendedDirty struct{}

func (SuspendedDirty) Dirtied() map[types.FileID]struct{} { return map[types.FileID]struct{}{} }
func (SuspendedDirty) IsDirty(types.Source) bool          { return false }

// IfModifiedDirty dirties a Source when any reverse dependency has been
// modified since that Source was last parsed, or has vanished entirely.
// An optional doublestar glob pattern (matching internal/watch's "**"
// policy, spec.md §4.3) narrows which Sources are considered at all.
type IfModifiedDirty struct {
	deps    DependencyLookup
	lastMod *lastModifiedCache
	match   string // doublestar glob against the source's path, "" = all
	paths   PathLookup
}

func NewIfModifiedDirty(deps DependencyLookup, paths PathLookup, match string) *IfModifiedDirty {
	return &IfModifiedDirty{deps: deps, lastMod: newLastModifiedCache(paths), match: match, paths: paths}
}

// Dirtied is unsupported for IfModifiedDirty: it has no fixed scope of
// "already known dirty" fileIds, only a per-Source predicate. Callers
// that need a set should run IsDirty over the Sources they care about.
func (d *IfModifiedDirty) Dirtied() map[types.FileID]struct{} {
	return map[types.FileID]struct{}{}
}

func (d *IfModifiedDirty) IsDirty(source types.Source) bool {
	if d.match != "" {
		path, ok := d.paths.Path(source.FileID)
		if !ok {
			return true // vanished from the registry: treat as dirty
		}
		if matched, err := doublestar.Match(d.match, path); err != nil || !matched {
			return false
		}
	}
	headers, err := d.deps.HeadersDependedOnBy(source.FileID)
	if err != nil {
		return false
	}
	for r := range headers {
		mod := d.lastMod.lastModified(r)
		if mod.IsZero() || mod.After(source.Parsed) {
			return true
		}
	}
	return false
}

// WatcherDirty is seeded by a batch of modified fileIds (coalesced by
// DirtyTimer) and dirties every Source that depends upward on one of
// them and has not been re-parsed since.
type WatcherDirty struct {
	deps     DependencyLookup
	lastMod  *lastModifiedCache
	modified map[types.FileID]struct{}
}

func NewWatcherDirty(deps DependencyLookup, paths PathLookup, modified map[types.FileID]struct{}) *WatcherDirty {
	return &WatcherDirty{deps: deps, lastMod: newLastModifiedCache(paths), modified: modified}
}

func (d *WatcherDirty) Dirtied() map[types.FileID]struct{} {
	out := make(map[types.FileID]struct{})
	for m := range d.modified {
		insertDirtyFile(out, m)
		dependents, err := d.deps.GetDependents(m)
		if err != nil {
			continue
		}
		for dep := range dependents {
			insertDirtyFile(out, dep)
		}
	}
	return out
}

func (d *WatcherDirty) IsDirty(source types.Source) bool {
	if _, ok := d.modified[source.FileID]; ok {
		mod := d.lastMod.lastModified(source.FileID)
		if mod.IsZero() || mod.After(source.Parsed) {
			return true
		}
	}
	headers, err := d.deps.HeadersDependedOnBy(source.FileID)
	if err != nil {
		return false
	}
	for m := range d.modified {
		if _, dependsOnM := headers[m]; !dependsOnM {
			continue
		}
		mod := d.lastMod.lastModified(m)
		if mod.IsZero() || mod.After(source.Parsed) {
			return true
		}
	}
	return false
}

// insertDirtyFile adds f to set, reporting whether it was newly added.
func insertDirtyFile(set map[types.FileID]struct{}, f types.FileID) bool {
	if _, ok := set[f]; ok {
		return false
	}
	set[f] = struct{}{}
	return true
}

var (
	_ Dirty = (*SimpleDirty)(nil)
	_ Dirty = SuspendedDirty{}
	_ Dirty = (*IfModifiedDirty)(nil)
	_ Dirty = (*WatcherDirty)(nil)
)
