// Package sync implements the 8-step merge protocol that folds buffered
// IndexData deltas into the persistent tables and resolves cross-TU
// references, spec.md §4.6.
//
// Grounded directly on spec.md §4.6 (no teacher analog: the teacher has
// no persistent cross-TU symbol graph to merge into); runs either on the
// orchestrator's own goroutine or on the single background sync
// goroutine internal/project starts, guarded by the orchestrator's
// Syncing state rather than a second mutex — the state machine is the
// lock.
package sync

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codegraph/xrefd/internal/debug"
	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/tables"
	"github.com/codegraph/xrefd/internal/types"
)

// WatchDirFunc registers a directory for filesystem watching (step 6).
// Implementations apply the "system paths only if explicitly enabled"
// policy themselves.
type WatchDirFunc func(dir string) error

// Engine runs the merge protocol against one project database.
type Engine struct {
	db     *store.DB
	tables *tables.Tables
	watch  WatchDirFunc
	paths  PathLookup
}

// PathLookup resolves a fileId to its absolute path, needed to compute
// each newly discovered file's parent directory (step 6).
type PathLookup interface {
	Path(fileID types.FileID) (string, bool)
}

func New(db *store.DB, t *tables.Tables, watch WatchDirFunc, paths PathLookup) *Engine {
	return &Engine{db: db, tables: t, watch: watch, paths: paths}
}

// Result summarizes one Sync call for logging and SyncStatus reporting.
type Result struct {
	Merged       int
	NewFiles     int
	ResolvedRefs int
	Status       string
}

// Sync merges every entry of indexData into the persistent tables, purges
// dirtyFiles, and returns a one-line status. This function only reads
// indexData and dirtyFiles and never clears them: the orchestrator hands
// over its maps and replaces them with empty ones before calling Sync
// (steps 1 and 8 describe the clearing).
func (e *Engine) Sync(
	indexData map[types.JobKey]*types.IndexData,
	dirtyFiles map[types.FileID]struct{},
	visitedFiles map[types.FileID]string,
) (Result, error) {
	ws, err := e.db.Begin()
	if err != nil {
		return Result{}, err
	}
	result, err := e.sync(ws, indexData, dirtyFiles, visitedFiles)
	if err != nil {
		_ = ws.Rollback()
		return Result{}, err
	}
	if err := ws.Commit(); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (e *Engine) sync(
	ws *store.WriteScope,
	indexData map[types.JobKey]*types.IndexData,
	dirtyFiles map[types.FileID]struct{},
	visitedFiles map[types.FileID]string,
) (Result, error) {
	// Step 1: purge every dirtied fileId from the symbol-family tables.
	for fileID := range dirtyFiles {
		if err := e.tables.EraseSymbolsForFile(ws, fileID); err != nil {
			return Result{}, err
		}
		if err := e.tables.EraseReferencesForFile(ws, fileID); err != nil {
			return Result{}, err
		}
		if err := e.tables.EraseTargetsForFile(ws, fileID); err != nil {
			return Result{}, err
		}
		if err := e.tables.EraseSymbolNamesForFile(ws, fileID); err != nil {
			return Result{}, err
		}
		if err := e.tables.EraseUsrForFile(ws, fileID); err != nil {
			return Result{}, err
		}
	}

	// Step 2: merge each IndexData in deterministic key order.
	keys := make([]types.JobKey, 0, len(indexData))
	for k := range indexData {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].FileID != keys[j].FileID {
			return keys[i].FileID < keys[j].FileID
		}
		return keys[i].BuildRootID < keys[j].BuildRootID
	})

	newFiles := map[types.FileID]struct{}{}
	allReferences := map[types.Location]map[types.Location]struct{}{}
	allTargets := map[types.Location]map[types.Location]types.SymbolKind{}
	var pendingRefs []types.PendingReference

	for _, k := range keys {
		data := indexData[k]
		if data == nil {
			continue
		}

		for header, tus := range data.Dependencies {
			if err := e.tables.UnionDependents(ws, header, tus); err != nil {
				return Result{}, err
			}
			newFiles[header] = struct{}{}
			for tu := range tus {
				newFiles[tu] = struct{}{}
			}
		}

		for fileID, fixits := range data.FixIts {
			if err := e.tables.SetFixIts(ws, fileID, fixits); err != nil {
				return Result{}, err
			}
		}

		for loc, info := range data.Symbols {
			if err := e.tables.SetSymbol(ws, loc, info); err != nil {
				return Result{}, err
			}
		}

		for name, locs := range data.SymbolNames {
			if err := e.tables.UnionSymbolName(ws, name, locs); err != nil {
				return Result{}, err
			}
		}

		for usr, locKinds := range data.USRs {
			if err := e.tables.UnionUsr(ws, usr, locKinds); err != nil {
				return Result{}, err
			}
		}

		for loc, refs := range data.References {
			mergeLocationSet(allReferences, loc, refs)
		}
		for loc, targets := range data.Targets {
			mergeLocationKindMap(allTargets, loc, targets)
		}

		pendingRefs = append(pendingRefs, data.PendingReferenceMap...)
	}

	// Step 3: joinCursors — every USR with >= 2 locations gets bidirectional
	// cross-edges in allTargets so navigation resolves across TUs.
	resolvedRefs, err := e.joinCursors(ws, allTargets)
	if err != nil {
		return Result{}, err
	}

	// Step 4: resolve pending references against Usr.
	for _, pending := range pendingRefs {
		decls, err := e.tables.GetUsrWS(ws, pending.USR)
		if err != nil {
			return Result{}, err
		}
		if len(decls) == 0 {
			if alt := objcImToPy(pending.USR); alt != pending.USR {
				decls, err = e.tables.GetUsrWS(ws, alt)
				if err != nil {
					return Result{}, err
				}
			}
		}
		for declLoc := range decls {
			insertTarget(allTargets, pending.Location, declLoc, pending.Kind)
			insertReference(allReferences, declLoc, pending.Location)
			resolvedRefs++
		}
	}

	// Step 5: commit-with-union-if-strictly-larger.
	for loc, add := range allTargets {
		if err := e.tables.CommitTargets(ws, loc, add); err != nil {
			return Result{}, err
		}
	}
	for loc, add := range allReferences {
		if err := e.tables.CommitReferences(ws, loc, add); err != nil {
			return Result{}, err
		}
	}

	// Step 6: watch every newly discovered file's parent directory.
	if e.watch != nil {
		for fileID := range newFiles {
			path, ok := e.paths.Path(fileID)
			if !ok {
				continue
			}
			if err := e.watch(filepath.Dir(path)); err != nil {
				debug.LogSync("watch %s: %v", path, err)
			}
		}
	}

	// Step 7: persist visitedFiles.
	visited := make(map[uint32]string, len(visitedFiles))
	for id, path := range visitedFiles {
		visited[uint32(id)] = path
	}
	if err := e.tables.SetVisitedFiles(ws, visited); err != nil {
		return Result{}, err
	}

	status := fmt.Sprintf("sync: merged %d index deltas, %d references resolved", len(keys), resolvedRefs)
	debug.LogSync("%s", status)

	return Result{
		Merged:       len(keys),
		NewFiles:     len(newFiles),
		ResolvedRefs: resolvedRefs,
		Status:       status,
	}, nil
}

// joinCursors emits a bidirectional target edge between every pair of
// distinct locations sharing a USR (spec.md §4.6 step 3).
func (e *Engine) joinCursors(ws *store.WriteScope, allTargets map[types.Location]map[types.Location]types.SymbolKind) (int, error) {
	usrs, maps, err := e.tables.AllUsrWS(ws)
	if err != nil {
		return 0, err
	}
	joined := 0
	for i := range usrs {
		locs := maps[i]
		if len(locs) < 2 {
			continue
		}
		locList := make([]types.Location, 0, len(locs))
		for loc := range locs {
			locList = append(locList, loc)
		}
		for _, a := range locList {
			for _, b := range locList {
				if a == b {
					continue
				}
				insertTarget(allTargets, a, b, locs[b])
				joined++
			}
		}
	}
	return joined, nil
}

// objcImToPy rewrites an Objective-C implicit-instance USR decoration to
// its property-accessor form, the heuristic fallback spec.md §4.6 step 4
// names.
func objcImToPy(usr string) string {
	return strings.Replace(usr, "(im)", "(py)", 1)
}

func mergeLocationSet(dst map[types.Location]map[types.Location]struct{}, loc types.Location, add map[types.Location]struct{}) {
	existing, ok := dst[loc]
	if !ok {
		existing = map[types.Location]struct{}{}
		dst[loc] = existing
	}
	for k := range add {
		existing[k] = struct{}{}
	}
}

func mergeLocationKindMap(dst map[types.Location]map[types.Location]types.SymbolKind, loc types.Location, add map[types.Location]types.SymbolKind) {
	existing, ok := dst[loc]
	if !ok {
		existing = map[types.Location]types.SymbolKind{}
		dst[loc] = existing
	}
	for k, v := range add {
		existing[k] = v
	}
}

func insertTarget(dst map[types.Location]map[types.Location]types.SymbolKind, from, to types.Location, kind types.SymbolKind) {
	existing, ok := dst[from]
	if !ok {
		existing = map[types.Location]types.SymbolKind{}
		dst[from] = existing
	}
	existing[to] = kind
}

func insertReference(dst map[types.Location]map[types.Location]struct{}, decl, ref types.Location) {
	existing, ok := dst[decl]
	if !ok {
		existing = map[types.Location]struct{}{}
		dst[decl] = existing
	}
	existing[ref] = struct{}{}
}

