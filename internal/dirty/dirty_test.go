package dirty

import (
	"testing"
	"time"

	"github.com/codegraph/xrefd/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeps struct {
	// dependents[header] = set of TUs depending on header
	dependents map[types.FileID]map[types.FileID]struct{}
}

func (f *fakeDeps) GetDependents(header types.FileID) (map[types.FileID]struct{}, error) {
	return f.dependents[header], nil
}

func (f *fakeDeps) HeadersDependedOnBy(tu types.FileID) (map[types.FileID]struct{}, error) {
	out := map[types.FileID]struct{}{}
	for header, tus := range f.dependents {
		if _, ok := tus[tu]; ok {
			out[header] = struct{}{}
		}
	}
	return out, nil
}

type fakePaths struct {
	paths map[types.FileID]string
}

func (f *fakePaths) Path(id types.FileID) (string, bool) {
	p, ok := f.paths[id]
	return p, ok
}

func TestSimpleDirtyTransitivelyExpands(t *testing.T) {
	// a.h included by a.cpp; a.cpp included by (nothing)
	deps := &fakeDeps{dependents: map[types.FileID]map[types.FileID]struct{}{
		1: {2: {}}, // header 1 (a.h) depended on by TU 2 (a.cpp)
	}}
	d, err := NewSimpleDirty(deps, map[types.FileID]struct{}{1: {}})
	require.NoError(t, err)

	dirtied := d.Dirtied()
	assert.Contains(t, dirtied, types.FileID(1))
	assert.Contains(t, dirtied, types.FileID(2))

	assert.True(t, d.IsDirty(types.Source{FileID: 2}))
	assert.False(t, d.IsDirty(types.Source{FileID: 3}))
}

func TestSuspendedDirtyReportsNone(t *testing.T) {
	var d SuspendedDirty
	assert.Empty(t, d.Dirtied())
	assert.False(t, d.IsDirty(types.Source{FileID: 1}))
}

func TestIfModifiedDirtyVanishedHeaderIsDirty(t *testing.T) {
	now := time.Now()
	deps := &fakeDeps{dependents: map[types.FileID]map[types.FileID]struct{}{
		10: {2: {}}, // header 10 depended on by TU 2
	}}
	paths := &fakePaths{paths: map[types.FileID]string{}}
	d := NewIfModifiedDirty(deps, paths, "")

	// header 10 has no path registered -> lastModified is zero -> dirty
	assert.True(t, d.IsDirty(types.Source{FileID: 2, Parsed: now}))

	// a source with no dependencies at all is not dirty
	assert.False(t, d.IsDirty(types.Source{FileID: 99, Parsed: now}))
}

func TestWatcherDirtySeedsAndPropagates(t *testing.T) {
	deps := &fakeDeps{dependents: map[types.FileID]map[types.FileID]struct{}{
		5: {6: {}}, // header 5 depended on by TU 6
	}}
	paths := &fakePaths{paths: map[types.FileID]string{}}
	modified := map[types.FileID]struct{}{5: {}}
	d := NewWatcherDirty(deps, paths, modified)

	dirtied := d.Dirtied()
	assert.Contains(t, dirtied, types.FileID(5))
	assert.Contains(t, dirtied, types.FileID(6))

	assert.True(t, d.IsDirty(types.Source{FileID: 6, Parsed: time.Now()}))
	assert.False(t, d.IsDirty(types.Source{FileID: 7, Parsed: time.Now()}))
}
