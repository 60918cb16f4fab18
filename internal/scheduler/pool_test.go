package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/codegraph/xrefd/internal/interfaces"
	"github.com/codegraph/xrefd/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexer struct {
	blockUntil chan struct{}
}

func (f *fakeIndexer) Index(ctx context.Context, job *interfaces.IndexerJob, v interfaces.FileVisitor) (*types.IndexData, error) {
	if f.blockUntil != nil {
		select {
		case <-f.blockUntil:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &types.IndexData{FileID: job.Source.FileID, Flags: types.FlagComplete}, nil
}

type fakeVisitor struct{}

func (fakeVisitor) VisitFile(types.FileID, string, types.JobKey) bool       { return true }
func (fakeVisitor) ReleaseFileIDs(types.JobKey, []types.FileID)             {}

func TestAddRunsJobAndInvokesOnDone(t *testing.T) {
	pool := NewWorkerPool(&fakeIndexer{}, fakeVisitor{}, 2, 8)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	var got *types.IndexData
	pool.Add(&interfaces.IndexerJob{Source: types.Source{FileID: 7}}, func(d *types.IndexData) {
		got = d
		wg.Done()
	})

	waitOrTimeout(t, &wg, time.Second)
	require.NotNil(t, got)
	assert.Equal(t, types.FileID(7), got.FileID)
}

func TestAbortCancelsRunningJob(t *testing.T) {
	block := make(chan struct{})
	pool := NewWorkerPool(&fakeIndexer{blockUntil: block}, fakeVisitor{}, 1, 8)
	defer pool.Shutdown()

	var mu sync.Mutex
	called := false
	job := &interfaces.IndexerJob{Source: types.Source{FileID: 3}}
	pool.Add(job, func(d *types.IndexData) {
		mu.Lock()
		called = true
		mu.Unlock()
	})

	// give the worker a moment to pick the job up before aborting
	time.Sleep(20 * time.Millisecond)
	pool.Abort(job.Key())

	// the cancelled run unwinds without invoking onDone (the deferred
	// Shutdown would hang if the run had not been cancelled)
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called, "onDone must not fire for an aborted job")
}

func TestShutdownDrainsWorkers(t *testing.T) {
	pool := NewWorkerPool(&fakeIndexer{}, fakeVisitor{}, 3, 8)
	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		pool.Add(&interfaces.IndexerJob{Source: types.Source{FileID: types.FileID(i)}}, func(*types.IndexData) {
			wg.Done()
		})
	}
	waitOrTimeout(t, &wg, time.Second)
	pool.Shutdown()
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for jobs")
	}
}
