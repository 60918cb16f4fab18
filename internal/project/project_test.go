package project

import (
	"testing"
	"time"

	"github.com/codegraph/xrefd/internal/interfaces"
	"github.com/codegraph/xrefd/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncScheduler completes every job immediately, on a separate goroutine as
// interfaces.JobScheduler requires (onDone must fire outside the
// orchestrator's own goroutine).
type syncScheduler struct {
	result *types.IndexData
}

func (s *syncScheduler) Add(job *interfaces.IndexerJob, onDone func(*types.IndexData)) {
	go onDone(s.result)
}
func (s *syncScheduler) Abort(key types.JobKey) {}
func (s *syncScheduler) Shutdown()               {}

func newTestProject(t *testing.T, sched interfaces.JobScheduler, cfg Config) *Project {
	t.Helper()
	p := New(t.TempDir(), sched, nil, cfg)
	require.NoError(t, p.Load())
	t.Cleanup(func() {
		p.Unload()
		p.Shutdown()
	})
	return p
}

func TestSubmitCompletesAndSyncsWhenThresholdReached(t *testing.T) {
	loc := types.Location{FileID: 1, Line: 1, Column: 1}
	sched := &syncScheduler{result: &types.IndexData{
		FileID: 1,
		Flags:  types.FlagComplete,
		Symbols: map[types.Location]*types.SymbolInfo{
			loc: {SymbolName: "foo", Kind: types.KindFunction, Definition: true},
		},
	}}
	cfg := Config{SyncThreshold: 1, SyncTimeout: 5 * time.Millisecond, DirtyTimeout: 5 * time.Millisecond}
	p := newTestProject(t, sched, cfg)

	p.Submit(types.Source{FileID: 1, BuildRootID: 0}, false)

	require.Eventually(t, func() bool {
		locs, err := p.Locations("foo", 1)
		return err == nil && len(locs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestVisitFileIsExclusive(t *testing.T) {
	p := newTestProject(t, &syncScheduler{}, DefaultConfig())

	key := types.JobKey{FileID: 1}
	ok := p.VisitFile(1, "/a.h", key)
	assert.True(t, ok)

	other := types.JobKey{FileID: 2}
	ok = p.VisitFile(1, "/a.h", other)
	assert.False(t, ok)

	p.ReleaseFileIDs(key, []types.FileID{1})
	ok = p.VisitFile(1, "/a.h", other)
	assert.True(t, ok)
}

func TestSuspendBlocksWatcherEventFromDirtying(t *testing.T) {
	p := newTestProject(t, &syncScheduler{}, DefaultConfig())

	p.Suspend(1)
	assert.Equal(t, []types.FileID{1}, p.SuspendedFiles())

	p.WatcherEvent(1)
	status := p.Status()
	assert.Equal(t, 0, status.DirtyFiles)

	p.Resume(1)
	assert.Empty(t, p.SuspendedFiles())
}

func TestAbortRemovesActiveJobWithoutTouchingTables(t *testing.T) {
	blockUntil := make(chan struct{})
	blockingSched := &blockingScheduler{blockUntil: blockUntil}
	p := newTestProject(t, blockingSched, DefaultConfig())

	p.Submit(types.Source{FileID: 5, BuildRootID: 0}, false)
	require.Eventually(t, func() bool {
		return p.Status().ActiveJobs == 1
	}, time.Second, 10*time.Millisecond)

	p.Abort(types.JobKey{FileID: 5, BuildRootID: 0})
	assert.Equal(t, 0, p.Status().ActiveJobs)
	close(blockUntil)
}

type blockingScheduler struct {
	blockUntil chan struct{}
}

func (b *blockingScheduler) Add(job *interfaces.IndexerJob, onDone func(*types.IndexData)) {
	go func() {
		<-b.blockUntil
		onDone(&types.IndexData{FileID: job.Source.FileID, Flags: types.FlagComplete})
	}()
}
func (b *blockingScheduler) Abort(key types.JobKey) {}
func (b *blockingScheduler) Shutdown()               {}
