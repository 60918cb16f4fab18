// Package nullindexer ships a reference Indexer (spec.md §6's parser
// front-end, named external to the core) so internal/scheduler and
// cmd/xrefd are runnable end to end without a real parser wired in: it
// visits the job's own file and returns an empty, FlagComplete IndexData. A
// deployment with an actual parser replaces this with its own
// interfaces.Indexer; nothing in internal/project or internal/scheduler
// depends on this package.
package nullindexer

import (
	"context"
	"time"

	"github.com/codegraph/xrefd/internal/interfaces"
	"github.com/codegraph/xrefd/internal/types"
)

// Indexer satisfies interfaces.Indexer by claiming the job's own file and
// completing immediately with no symbols.
type Indexer struct{}

func (Indexer) Index(ctx context.Context, job *interfaces.IndexerJob, visitor interfaces.FileVisitor) (*types.IndexData, error) {
	key := job.Key()
	if !visitor.VisitFile(job.Source.FileID, "", key) {
		return nil, nil
	}
	defer visitor.ReleaseFileIDs(key, []types.FileID{job.Source.FileID})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return &types.IndexData{
		FileID:    job.Source.FileID,
		ParseTime: time.Now(),
		Flags:     types.FlagComplete,
	}, nil
}
