// Package scheduler implements a reference interfaces.JobScheduler: a
// bounded worker pool with per-job context cancellation. spec.md names the
// job-running transport as an external collaborator; this package ships a
// concrete one so the module runs end to end.
//
// Grounded on the queue-channel + fixed-worker-count shape of
// imicola-notebit's indexing pipeline (pkg/indexing/pipeline.go), adapted
// from a fire-and-forget note indexer into one that tracks each job by
// types.JobKey so Abort can cancel a specific in-flight run, and using
// golang.org/x/sync/errgroup for Shutdown's drain the way lci's own worker
// code reaches for x/sync.
package scheduler

import (
	"context"
	"sync"

	"github.com/codegraph/xrefd/internal/debug"
	"github.com/codegraph/xrefd/internal/interfaces"
	"github.com/codegraph/xrefd/internal/types"
	"golang.org/x/sync/errgroup"
)

type queuedJob struct {
	job    *interfaces.IndexerJob
	onDone func(*types.IndexData)
	cancel context.CancelFunc
}

// WorkerPool runs IndexerJobs on a fixed number of goroutines.
type WorkerPool struct {
	indexer interfaces.Indexer
	visitor interfaces.FileVisitor

	queue chan *queuedJob

	mu     sync.Mutex
	active map[types.JobKey]*queuedJob
	closed bool
	group  errgroup.Group
}

// NewWorkerPool starts n workers draining jobs submitted via Add.
func NewWorkerPool(indexer interfaces.Indexer, visitor interfaces.FileVisitor, n int, queueSize int) *WorkerPool {
	if n <= 0 {
		n = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	p := &WorkerPool{
		indexer: indexer,
		visitor: visitor,
		queue:   make(chan *queuedJob, queueSize),
		active:  make(map[types.JobKey]*queuedJob),
	}
	for i := 0; i < n; i++ {
		p.group.Go(p.worker)
	}
	return p
}

func (p *WorkerPool) worker() error {
	for qj := range p.queue {
		p.run(qj)
	}
	return nil
}

func (p *WorkerPool) run(qj *queuedJob) {
	key := qj.job.Key()

	p.mu.Lock()
	if _, still := p.active[key]; !still {
		p.mu.Unlock()
		return // aborted before it reached a worker
	}
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	qj.cancel = cancel
	p.mu.Unlock()

	data, err := p.indexer.Index(ctx, qj.job, p.visitor)
	cancel()

	p.mu.Lock()
	cur := p.active[key]
	if cur == qj {
		delete(p.active, key)
	}
	p.mu.Unlock()

	if cur != qj {
		return // aborted while running: no completion callback
	}
	if err != nil {
		debug.LogJob("scheduler: job %v failed: %v", key, err)
		qj.onDone(nil)
		return
	}
	qj.onDone(data)
}

// Add schedules job; onDone fires exactly once unless Abort wins the race.
func (p *WorkerPool) Add(job *interfaces.IndexerJob, onDone func(*types.IndexData)) {
	qj := &queuedJob{job: job, onDone: onDone}
	key := job.Key()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.active[key] = qj
	p.mu.Unlock()

	select {
	case p.queue <- qj:
	default:
		// Queue full: run the job on a goroutine of its own rather than
		// block the orchestrator's single goroutine, matching the non-blocking-enqueue fallback
		// the teacher's pipeline uses for synchronous callers.
		go p.run(qj)
	}
}

// Abort cancels job key if it is queued or running. A no-op otherwise.
func (p *WorkerPool) Abort(key types.JobKey) {
	p.mu.Lock()
	qj, ok := p.active[key]
	if ok {
		delete(p.active, key)
	}
	p.mu.Unlock()
	if !ok {
		return
	}
	if qj.cancel != nil {
		qj.cancel()
	}
}

// Shutdown aborts every outstanding job and waits for workers to exit.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for key, qj := range p.active {
		if qj.cancel != nil {
			qj.cancel()
		}
		delete(p.active, key)
	}
	p.mu.Unlock()

	close(p.queue)
	_ = p.group.Wait()
}

var _ interfaces.JobScheduler = (*WorkerPool)(nil)
