package sync

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

func newTestEngine(t *testing.T, paths *fakePaths) (*Engine, *tables.Tables, *store.DB) {
	t.Helper()
	db, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	tb := tables.Open(db)
	e := New(db, tb, func(dir string) error { return nil }, paths)
	return e, tb, db
}

func TestSyncMergesSymbolsAndSymbolNames(t *testing.T) {
	e, tb, _ := newTestEngine(t, &fakePaths{paths: map[types.FileID]string{}})

	loc := types.Location{FileID: 1, Line: 3, Column: 1}
	data := &types.IndexData{
		FileID: 1,
		Flags:  types.FlagComplete,
		Symbols: map[types.Location]*types.SymbolInfo{
			loc: {SymbolName: "foo", Kind: types.KindFunction, Definition: true},
		},
		SymbolNames: map[string]map[types.Location]struct{}{
			"foo": {loc: {}},
		},
	}
	indexData := map[types.JobKey]*types.IndexData{{FileID: 1, BuildRootID: 0}: data}

	result, err := e.Sync(indexData, map[types.FileID]struct{}{}, map[types.FileID]string{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Merged)

	sym, ok, err := tb.GetSymbol(loc)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "foo", sym.SymbolName)

	names, sets, err := tb.AllSymbolNames()
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Contains(t, sets[0], loc)
}

func TestSyncJoinCursorsCrossLinksSharedUSR(t *testing.T) {
	e, tb, _ := newTestEngine(t, &fakePaths{paths: map[types.FileID]string{}})

	declLoc := types.Location{FileID: 1, Line: 1, Column: 1}
	defALoc := types.Location{FileID: 2, Line: 5, Column: 1}
	defBLoc := types.Location{FileID: 3, Line: 9, Column: 1}

	dataA := &types.IndexData{
		FileID: 2,
		Flags:  types.FlagComplete,
		USRs: map[string]map[types.Location]types.SymbolKind{
			"c:@F@foo#": {declLoc: types.KindFunction, defALoc: types.KindFunction},
		},
	}
	dataB := &types.IndexData{
		FileID: 3,
		Flags:  types.FlagComplete,
		USRs: map[string]map[types.Location]types.SymbolKind{
			"c:@F@foo#": {declLoc: types.KindFunction, defBLoc: types.KindFunction},
		},
	}
	indexData := map[types.JobKey]*types.IndexData{
		{FileID: 2}: dataA,
		{FileID: 3}: dataB,
	}

	_, err := e.Sync(indexData, map[types.FileID]struct{}{}, map[types.FileID]string{})
	require.NoError(t, err)

	targets, err := tb.GetTargets(declLoc)
	require.NoError(t, err)
	assert.Contains(t, targets, defALoc)
	assert.Contains(t, targets, defBLoc)

	aTargets, err := tb.GetTargets(defALoc)
	require.NoError(t, err)
	assert.Contains(t, aTargets, defBLoc)
}

func TestSyncPurgesDirtyFilesBeforeMerge(t *testing.T) {
	e, tb, db := newTestEngine(t, &fakePaths{paths: map[types.FileID]string{}})

	loc := types.Location{FileID: 1, Line: 1, Column: 1}
	ws, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, tb.SetSymbol(ws, loc, &types.SymbolInfo{SymbolName: "stale"}))
	require.NoError(t, ws.Commit())

	_, err = e.Sync(map[types.JobKey]*types.IndexData{}, map[types.FileID]struct{}{1: {}}, map[types.FileID]string{})
	require.NoError(t, err)

	_, ok, err := tb.GetSymbol(loc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSyncWatchesNewlyDiscoveredDirectories(t *testing.T) {
	paths := &fakePaths{paths: map[types.FileID]string{2: "/proj/include/a.h"}}
	e, _, _ := newTestEngine(t, paths)
	var watched []string
	e.watch = func(dir string) error {
		watched = append(watched, dir)
		return nil
	}

	data := &types.IndexData{
		FileID: 1,
		Flags:  types.FlagComplete,
		Dependencies: map[types.FileID]map[types.FileID]struct{}{
			2: {1: {}},
		},
	}
	_, err := e.Sync(map[types.JobKey]*types.IndexData{{FileID: 1}: data}, map[types.FileID]struct{}{}, map[types.FileID]string{})
	require.NoError(t, err)
	assert.Contains(t, watched, "/proj/include")
}

func TestSyncPersistsVisitedFiles(t *testing.T) {
	e, tb, _ := newTestEngine(t, &fakePaths{paths: map[types.FileID]string{}})

	visited := map[types.FileID]string{1: "/a.cpp"}
	_, err := e.Sync(map[types.JobKey]*types.IndexData{}, map[types.FileID]struct{}{}, visited)
	require.NoError(t, err)

	stored, err := tb.GetVisitedFiles()
	require.NoError(t, err)
	assert.Equal(t, "/a.cpp", stored[1])
}
