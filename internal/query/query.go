// Package query implements the read primitives spec.md §4.8 exposes over
// the persistent tables: locations(), sort(), dependencies(), reindex(),
// and remove().
//
// Grounded directly on spec.md §4.8 (no teacher analog: the teacher has no
// persistent symbol graph to query); the prefix-scan-then-filter shape of
// locations() follows the same lower_bound/scan-while-prefix idiom
// internal/tables.PrefixScanSymbolNames already implements for the
// SymbolNames table.
package query

import (
	"sort"
	"strings"

	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/tables"
	"github.com/codegraph/xrefd/internal/types"
)

// PathLookup resolves a fileId to its absolute path, needed by reindex()
// and remove() to match against a glob/regex pattern.
type PathLookup interface {
	Path(fileID types.FileID) (string, bool)
}

// Engine runs the query primitives against one project database.
type Engine struct {
	tables *tables.Tables
	paths  PathLookup
}

func New(t *tables.Tables, paths PathLookup) *Engine {
	return &Engine{tables: t, paths: paths}
}

// matchSymbolName implements spec.md §4.8's matching rule for locations():
// for a function-like kind, a candidate stored name containing the
// function-nesting sentinel ")::" (a symbol declared inside a function-like
// signature, e.g. a block-scope local) restarts matching after the last
// occurrence of that sentinel, so a query for the inner name alone still
// finds it; a non-function-like symbol whose name happens to contain ")::"
// is matched as a whole, unrestarted. The query then matches if it is a
// prefix of what remains and either consumes the whole remainder or is
// immediately followed by '(' (so "foo" matches "foo" and "foo(int)" but
// not "foobar").
func matchSymbolName(query, storedName string, kind types.SymbolKind) bool {
	candidate := storedName
	if kind.IsFunctionLike() {
		if idx := strings.LastIndex(candidate, ")::"); idx >= 0 {
			candidate = candidate[idx+len(")::"):]
		}
	}
	if !strings.HasPrefix(candidate, query) {
		return false
	}
	rest := candidate[len(query):]
	return rest == "" || rest[0] == '('
}

// Locations implements locations(symbolName, fileId) (spec.md §4.8):
//   - fileId != 0: every non-reference symbol confined to that file,
//     filtered by symbolName if given.
//   - symbolName == "" and fileId == 0: every non-reference symbol in the
//     project.
//   - otherwise: lower_bound(SymbolNames, symbolName), scan while keys
//     share the byte prefix, apply matchSymbolName per candidate name.
func (e *Engine) Locations(symbolName string, fileID types.FileID) ([]types.Location, error) {
	if fileID != 0 {
		locs, infos, err := e.tables.SymbolsInFile(fileID)
		if err != nil {
			return nil, err
		}
		out := make([]types.Location, 0, len(locs))
		for i, info := range infos {
			if info.IsReference() {
				continue
			}
			if symbolName != "" && !matchSymbolName(symbolName, info.SymbolName, info.Kind) {
				continue
			}
			out = append(out, locs[i])
		}
		sortLocations(out)
		return out, nil
	}

	if symbolName == "" {
		locsAll, infos, err := e.tables.AllSymbols()
		if err != nil {
			return nil, err
		}
		out := make([]types.Location, 0, len(infos))
		for i, info := range infos {
			if info.IsReference() {
				continue
			}
			out = append(out, locsAll[i])
		}
		sortLocations(out)
		return out, nil
	}

	names, sets, err := e.tables.PrefixScanSymbolNames(symbolName)
	if err != nil {
		return nil, err
	}
	var out []types.Location
	for i, name := range names {
		for loc := range sets[i] {
			info, ok, err := e.tables.GetSymbol(loc)
			if err != nil {
				return nil, err
			}
			if !ok || info.IsReference() {
				continue
			}
			if !matchSymbolName(symbolName, name, info.Kind) {
				continue
			}
			out = append(out, loc)
		}
	}
	sortLocations(out)
	return out, nil
}

func sortLocations(locs []types.Location) {
	sort.Slice(locs, func(i, j int) bool { return locs[i].Less(locs[j]) })
}

// kindRank orders SymbolKind for sort()'s default ordering. Kinds rank by
// the enum's own declaration order (KindUnknown first, then
// function/method/class/...).
func kindRank(k types.SymbolKind) int { return int(k) }

// Sort implements sort(locations, flags) (spec.md §4.8): default order is
// kind-rank then Location; SortDeclarationOnly drops definitions that have
// a resolved (non-null) declaration target, since the declaration itself
// is already present in the list; SortReverse reverses the final order.
func (e *Engine) Sort(locs []types.Location, flags types.SortFlags) ([]types.SortedCursor, error) {
	out := make([]types.SortedCursor, 0, len(locs))
	for _, loc := range locs {
		info, ok, err := e.tables.GetSymbol(loc)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if flags&types.SortDeclarationOnly != 0 && info.Definition {
			targets, err := e.tables.GetTargets(loc)
			if err != nil {
				return nil, err
			}
			if hasNonNullTarget(targets) {
				continue
			}
		}
		out = append(out, types.SortedCursor{
			Location:     loc,
			Kind:         info.Kind,
			IsDefinition: info.Definition,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		ri, rj := kindRank(out[i].Kind), kindRank(out[j].Kind)
		if ri != rj {
			return ri < rj
		}
		return out[i].Location.Less(out[j].Location)
	})

	if flags&types.SortReverse != 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func hasNonNullTarget(targets map[types.Location]types.SymbolKind) bool {
	for loc := range targets {
		if !loc.IsNull() {
			return true
		}
	}
	return false
}

// Dependencies implements dependencies(fileId, mode) (spec.md §4.8).
func (e *Engine) Dependencies(fileID types.FileID, mode types.DependencyMode) ([]types.FileID, error) {
	var set map[types.FileID]struct{}
	var err error
	switch mode {
	case types.DependsOnArg:
		set, err = e.tables.GetDependents(fileID)
	case types.ArgDependsOn:
		set, err = e.tables.HeadersDependedOnBy(fileID)
	}
	if err != nil {
		return nil, err
	}
	out := make([]types.FileID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Matcher reports whether path satisfies a reindex/remove pattern. Callers
// supply a glob (doublestar) or exact-path matcher; query itself stays
// pattern-format agnostic.
type Matcher func(path string) bool

// Reindex implements reindex(match, query) (spec.md §4.8): Reindex mode
// returns every fileId whose path satisfies match, for the caller to mark
// dirty and resubmit; CheckReindex mode returns the same set for the
// caller to wrap in a dirty.IfModifiedDirty instead of unconditionally
// dirtying it.
func (e *Engine) Reindex(match Matcher, mode types.ReindexMode) (map[types.FileID]struct{}, error) {
	sources, err := e.tables.AllSources()
	if err != nil {
		return nil, err
	}
	out := map[types.FileID]struct{}{}
	for _, s := range sources {
		path, ok := e.paths.Path(s.FileID)
		if !ok || !match(path) {
			continue
		}
		out[s.FileID] = struct{}{}
	}
	return out, nil
}

// Remove implements remove(match) (spec.md §4.8): erase every Source whose
// path satisfies match, purge that fileId from every symbol-family table,
// and return the number of fileIds removed. Aborting any in-flight job for
// a removed fileId is the caller's responsibility (internal/project owns
// activeJobs); Remove only touches the persistent tables.
func (e *Engine) Remove(db *store.DB, match Matcher) (int, error) {
	sources, err := e.tables.AllSources()
	if err != nil {
		return 0, err
	}
	toRemove := map[types.FileID]struct{}{}
	for _, s := range sources {
		path, ok := e.paths.Path(s.FileID)
		if !ok || !match(path) {
			continue
		}
		toRemove[s.FileID] = struct{}{}
	}
	if len(toRemove) == 0 {
		return 0, nil
	}

	ws, err := db.Begin()
	if err != nil {
		return 0, err
	}
	if err := e.remove(ws, sources, toRemove); err != nil {
		_ = ws.Rollback()
		return 0, err
	}
	if err := ws.Commit(); err != nil {
		return 0, err
	}
	return len(toRemove), nil
}

func (e *Engine) remove(ws *store.WriteScope, sources []types.Source, toRemove map[types.FileID]struct{}) error {
	for _, s := range sources {
		if _, ok := toRemove[s.FileID]; !ok {
			continue
		}
		if err := e.tables.EraseSource(ws, s.FileID, s.BuildRootID); err != nil {
			return err
		}
	}
	for fileID := range toRemove {
		if err := e.tables.EraseSymbolsForFile(ws, fileID); err != nil {
			return err
		}
		if err := e.tables.EraseReferencesForFile(ws, fileID); err != nil {
			return err
		}
		if err := e.tables.EraseTargetsForFile(ws, fileID); err != nil {
			return err
		}
		if err := e.tables.EraseSymbolNamesForFile(ws, fileID); err != nil {
			return err
		}
		if err := e.tables.EraseUsrForFile(ws, fileID); err != nil {
			return err
		}
		if err := e.tables.EraseDependent(ws, fileID); err != nil {
			return err
		}
		if err := e.tables.SetFixIts(ws, fileID, nil); err != nil {
			return err
		}
	}
	return nil
}
