// Package sourcemgr implements the Source table manager: admission of a
// newly submitted compile invocation into the Sources table, including
// the "one active build per fileId" bookkeeping.
//
// Grounded directly on spec.md §4.4 (no teacher analog: the teacher has
// no persistent per-fileId build-variant table), built on top of
// internal/tables' MarkActive, which already implements the
// rewrite-every-sibling's-Active-bit step.
package sourcemgr

import (
	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/tables"
	"github.com/codegraph/xrefd/internal/types"
)

// Manager owns admission of Source rows for Compile-flagged jobs.
type Manager struct {
	tables *tables.Tables

	// DisallowMultiple, when true, erases sibling Source rows with
	// differing arguments instead of keeping them inactive (spec.md §4.4
	// step 2, "disallow multiple sources per fileId" policy).
	DisallowMultiple bool
}

func New(t *tables.Tables) *Manager {
	return &Manager{tables: t}
}

// Admit applies spec.md §4.4 steps 1-2 for a Compile-flagged job, writing
// the resulting Source row(s) within ws. It returns the Source that
// should be handed to the scheduler (the newly-admitted or reactivated
// one) and whether anything changed on disk.
func (m *Manager) Admit(ws *store.WriteScope, candidate types.Source) (types.Source, bool, error) {
	existing, ok, err := m.tables.GetSourceWS(ws, candidate.FileID, candidate.BuildRootID)
	if err != nil {
		return types.Source{}, false, err
	}

	// Step 1: identical key and identical arguments is a no-op, except it
	// may still need to flip Active.
	if ok && existing.ArgsEqual(candidate.Args) {
		if err := m.tables.MarkActive(ws, candidate.FileID, candidate.BuildRootID); err != nil {
			return types.Source{}, false, err
		}
		existing.Flags |= types.SourceActive
		if err := m.tables.SetSource(ws, existing); err != nil {
			return types.Source{}, false, err
		}
		return existing, true, nil
	}

	// Step 2: scan the contiguous range for this fileId.
	siblings, err := m.tables.SourcesForFileWS(ws, candidate.FileID)
	if err != nil {
		return types.Source{}, false, err
	}

	var matchedExisting *types.Source
	for i := range siblings {
		s := siblings[i]
		if s.ArgsEqual(candidate.Args) {
			matchedExisting = &siblings[i]
			continue
		}
		if m.DisallowMultiple && s.BuildRootID != candidate.BuildRootID {
			if err := m.tables.EraseSource(ws, s.FileID, s.BuildRootID); err != nil {
				return types.Source{}, false, err
			}
		}
	}

	if matchedExisting != nil {
		if err := m.tables.MarkActive(ws, candidate.FileID, matchedExisting.BuildRootID); err != nil {
			return types.Source{}, false, err
		}
		matchedExisting.Flags |= types.SourceActive
		matchedExisting.Parsed = candidate.Parsed
		if err := m.tables.SetSource(ws, *matchedExisting); err != nil {
			return types.Source{}, false, err
		}
		return *matchedExisting, true, nil
	}

	// No existing entry shares these arguments: the new Source becomes
	// active and every sibling is cleared. MarkActive runs first and the
	// candidate is written after it, so the candidate keeps SourceActive
	// even when its BuildRootID is 0 (for which MarkActive clears every row).
	if err := m.tables.MarkActive(ws, candidate.FileID, candidate.BuildRootID); err != nil {
		return types.Source{}, false, err
	}
	candidate.Flags |= types.SourceActive
	if err := m.tables.SetSource(ws, candidate); err != nil {
		return types.Source{}, false, err
	}
	return candidate, true, nil
}
