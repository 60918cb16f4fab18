package query

import (
	"testing"

	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/tables"
	"github.com/codegraph/xrefd/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaths struct {
	paths map[types.FileID]string
}

func (f *fakePaths) Path(id types.FileID) (string, bool) {
	p, ok := f.paths[id]
	return p, ok
}

func newTestEngine(t *testing.T, paths map[types.FileID]string) (*Engine, *tables.Tables, *store.DB) {
	t.Helper()
	db, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	tb := tables.Open(db)
	return New(tb, &fakePaths{paths: paths}), tb, db
}

func setSymbol(t *testing.T, db *store.DB, tb *tables.Tables, loc types.Location, info *types.SymbolInfo) {
	t.Helper()
	ws, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, tb.SetSymbol(ws, loc, info))
	require.NoError(t, ws.Commit())
}

func setSymbolName(t *testing.T, db *store.DB, tb *tables.Tables, name string, locs map[types.Location]struct{}) {
	t.Helper()
	ws, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, tb.UnionSymbolName(ws, name, locs))
	require.NoError(t, ws.Commit())
}

func TestMatchSymbolNameExactAndCallSite(t *testing.T) {
	assert.True(t, matchSymbolName("foo", "foo", types.KindFunction))
	assert.True(t, matchSymbolName("foo", "foo(int)", types.KindFunction))
	assert.False(t, matchSymbolName("foo", "foobar", types.KindFunction))
}

func TestMatchSymbolNameRestartsAfterNestingSentinelForFunctionLikeKinds(t *testing.T) {
	assert.True(t, matchSymbolName("local", "outer(int)::local", types.KindFunction))
	assert.False(t, matchSymbolName("outer", "outer(int)::local", types.KindFunction))
}

func TestMatchSymbolNameDoesNotRestartForNonFunctionLikeKinds(t *testing.T) {
	// A non-function-like symbol (e.g. a variable) whose name merely
	// contains ")::" is matched as a whole, not restarted after it.
	assert.False(t, matchSymbolName("local", "outer(int)::local", types.KindVariable))
	assert.True(t, matchSymbolName("outer(int)::local", "outer(int)::local", types.KindVariable))
}

func TestLocationsFiltersReferencesAndMatchesByFile(t *testing.T) {
	e, tb, db := newTestEngine(t, nil)

	declLoc := types.Location{FileID: 1, Line: 1, Column: 1}
	refLoc := types.Location{FileID: 1, Line: 5, Column: 3}
	setSymbol(t, db, tb, declLoc, &types.SymbolInfo{SymbolName: "foo", Kind: types.KindFunction, Definition: true})
	setSymbol(t, db, tb, refLoc, &types.SymbolInfo{SymbolName: "foo", Kind: types.KindFunction, Targets: map[types.Location]struct{}{declLoc: {}}})

	locs, err := e.Locations("foo", 1)
	require.NoError(t, err)
	assert.Equal(t, []types.Location{declLoc}, locs)
}

func TestLocationsByNameScansSymbolNamesPrefix(t *testing.T) {
	e, tb, db := newTestEngine(t, nil)

	declLoc := types.Location{FileID: 2, Line: 10, Column: 1}
	setSymbol(t, db, tb, declLoc, &types.SymbolInfo{SymbolName: "bar", Kind: types.KindFunction, Definition: true})
	setSymbolName(t, db, tb, "bar", map[types.Location]struct{}{declLoc: {}})

	locs, err := e.Locations("bar", 0)
	require.NoError(t, err)
	assert.Equal(t, []types.Location{declLoc}, locs)

	locs, err = e.Locations("baz", 0)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestSortDeclarationOnlyDropsResolvedDefinitions(t *testing.T) {
	e, tb, db := newTestEngine(t, nil)

	declLoc := types.Location{FileID: 1, Line: 1, Column: 1}
	defLoc := types.Location{FileID: 1, Line: 20, Column: 1}
	setSymbol(t, db, tb, declLoc, &types.SymbolInfo{SymbolName: "f", Kind: types.KindFunction, Definition: false})
	setSymbol(t, db, tb, defLoc, &types.SymbolInfo{SymbolName: "f", Kind: types.KindFunction, Definition: true})

	ws, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, tb.CommitTargets(ws, defLoc, map[types.Location]types.SymbolKind{declLoc: types.KindFunction}))
	require.NoError(t, ws.Commit())

	out, err := e.Sort([]types.Location{declLoc, defLoc}, types.SortDeclarationOnly)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, declLoc, out[0].Location)
}

func TestSortReverseFlipsOrder(t *testing.T) {
	e, tb, db := newTestEngine(t, nil)

	a := types.Location{FileID: 1, Line: 1, Column: 1}
	b := types.Location{FileID: 1, Line: 2, Column: 1}
	setSymbol(t, db, tb, a, &types.SymbolInfo{SymbolName: "a", Kind: types.KindFunction})
	setSymbol(t, db, tb, b, &types.SymbolInfo{SymbolName: "b", Kind: types.KindFunction})

	out, err := e.Sort([]types.Location{a, b}, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, a, out[0].Location)

	rev, err := e.Sort([]types.Location{a, b}, types.SortReverse)
	require.NoError(t, err)
	require.Len(t, rev, 2)
	assert.Equal(t, b, rev[0].Location)
}

func TestDependenciesBothDirections(t *testing.T) {
	e, tb, db := newTestEngine(t, nil)

	ws, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, tb.UnionDependents(ws, 10, map[types.FileID]struct{}{1: {}, 2: {}}))
	require.NoError(t, ws.Commit())

	dependents, err := e.Dependencies(10, types.DependsOnArg)
	require.NoError(t, err)
	assert.Equal(t, []types.FileID{1, 2}, dependents)

	headers, err := e.Dependencies(1, types.ArgDependsOn)
	require.NoError(t, err)
	assert.Equal(t, []types.FileID{10}, headers)
}

func TestReindexMatchesByPath(t *testing.T) {
	paths := map[types.FileID]string{1: "/proj/a.cpp", 2: "/proj/b.cpp"}
	e, tb, db := newTestEngine(t, paths)

	ws, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, tb.SetSource(ws, types.Source{FileID: 1, BuildRootID: 0}))
	require.NoError(t, tb.SetSource(ws, types.Source{FileID: 2, BuildRootID: 0}))
	require.NoError(t, ws.Commit())

	match := func(path string) bool { return path == "/proj/a.cpp" }
	dirty, err := e.Reindex(match, types.Reindex)
	require.NoError(t, err)
	assert.Equal(t, map[types.FileID]struct{}{1: {}}, dirty)
}

func TestRemoveErasesSourceAndSymbolFamily(t *testing.T) {
	paths := map[types.FileID]string{1: "/proj/a.cpp"}
	e, tb, db := newTestEngine(t, paths)

	loc := types.Location{FileID: 1, Line: 1, Column: 1}
	ws, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, tb.SetSource(ws, types.Source{FileID: 1, BuildRootID: 0}))
	require.NoError(t, tb.SetSymbol(ws, loc, &types.SymbolInfo{SymbolName: "x"}))
	require.NoError(t, ws.Commit())

	n, err := e.Remove(db, func(path string) bool { return path == "/proj/a.cpp" })
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, err := tb.GetSource(1, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = tb.GetSymbol(loc)
	require.NoError(t, err)
	assert.False(t, ok)
}
