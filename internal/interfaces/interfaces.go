// Package interfaces declares the two abstract collaborators spec.md §1/§6
// names as external to the project-indexing core: the Indexer (parser
// front-end) and the JobScheduler (worker-process transport). The core only
// ever depends on these small interfaces, never on a concrete parser or
// transport, mirroring the consumer-defined-interface pattern in the
// teacher's internal/interfaces/indexer.go.
package interfaces

import (
	"context"

	"github.com/codegraph/xrefd/internal/types"
)

// IndexerJob is a single submitted unit of work: index one Source.
type IndexerJob struct {
	Source types.Source

	// Dirty marks a job admitted by the dirty engine rather than by an
	// explicit caller-submitted Source edit; the orchestrator uses it to
	// choose a zero SyncTimeout (spec.md §4.5 completion step 6).
	Dirty bool
}

// Key identifies the slot this job occupies in activeJobs/indexData.
func (j *IndexerJob) Key() types.JobKey { return j.Source.Key() }

// Indexer turns a Source into an IndexData. Implementations must call
// VisitFile before emitting any Location in a file they claim, and
// ReleaseFileIds on any file they abandon (spec.md §6).
type Indexer interface {
	// Index runs synchronously on whatever goroutine the JobScheduler
	// assigns it and returns the completed delta, or an error if the run
	// could not produce one (the core then treats the job as though it
	// finished without FlagComplete).
	Index(ctx context.Context, job *IndexerJob, visitor FileVisitor) (*types.IndexData, error)
}

// FileVisitor is the narrow slice of the core an Indexer needs while it
// runs: claiming ownership of files before emitting locations in them.
type FileVisitor interface {
	VisitFile(fileID types.FileID, path string, jobKey types.JobKey) bool
	ReleaseFileIDs(jobKey types.JobKey, fileIDs []types.FileID)
}

// JobScheduler runs and aborts indexer jobs outside the single-threaded
// orchestrator goroutine. Aborts must be idempotent and must never call
// back into the core's completion callback for the aborted job (spec.md
// §6).
type JobScheduler interface {
	// Add schedules job to run; onDone is invoked exactly once, with the
	// completed IndexData (possibly nil on error/non-completion) and the
	// flags observed, unless the job is aborted first.
	Add(job *IndexerJob, onDone func(*types.IndexData))
	// Abort cancels a previously-added job by key. A no-op if the job is
	// not known or has already finished.
	Abort(key types.JobKey)
	// Shutdown aborts every outstanding job and waits for workers to exit.
	Shutdown()
}
