package tables

import (
	"github.com/codegraph/xrefd/internal/idkey"
	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/types"
)

// GetDependents returns Dependencies[header]: every fileId that transitively
// includes header (spec.md §3 "Dependencies", the DependsOnArg direction).
func (t *Tables) GetDependents(header types.FileID) (map[types.FileID]struct{}, error) {
	v, ok, err := t.Dependencies.Find(idkey.EncodeFileID(header))
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[types.FileID]struct{}{}, nil
	}
	return decodeFileIDSet(v)
}

// UnionDependents merges tus into the stored dependents set for header.
func (t *Tables) UnionDependents(ws *store.WriteScope, header types.FileID, tus map[types.FileID]struct{}) error {
	key := idkey.EncodeFileID(header)
	v, ok, err := ws.Find("dependencies", key)
	if err != nil {
		return err
	}
	existing := map[types.FileID]struct{}{}
	if ok {
		existing, err = decodeFileIDSet(v)
		if err != nil {
			return err
		}
	}
	for id := range tus {
		existing[id] = struct{}{}
	}
	return ws.Set("dependencies", key, encodeFileIDSet(existing))
}

// AllDependencies returns the whole table, used by the ArgDependsOn
// direction of dependencies() (spec.md §4.8), which must scan every header
// to find which ones list fileID as a dependent.
func (t *Tables) AllDependencies() (headers []types.FileID, dependents []map[types.FileID]struct{}, err error) {
	entries, err := t.Dependencies.All()
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		set, err := decodeFileIDSet(e.Value)
		if err != nil {
			return nil, nil, err
		}
		headers = append(headers, idkey.DecodeFileID(e.Key))
		dependents = append(dependents, set)
	}
	return headers, dependents, nil
}

// HeadersDependedOnBy returns every header fileId whose dependents set
// contains tu: the ArgDependsOn direction scoped to one fileId, used by
// the IfModified/Watcher dirty detectors (spec.md §4.3).
func (t *Tables) HeadersDependedOnBy(tu types.FileID) (map[types.FileID]struct{}, error) {
	headers, dependents, err := t.AllDependencies()
	if err != nil {
		return nil, err
	}
	out := map[types.FileID]struct{}{}
	for i, set := range dependents {
		if _, ok := set[tu]; ok {
			out[headers[i]] = struct{}{}
		}
	}
	return out, nil
}

// EraseDependent removes fileID from every dependents set that contains it
// (used when a Source for fileID is removed entirely).
func (t *Tables) EraseDependent(ws *store.WriteScope, fileID types.FileID) error {
	entries, err := ws.All("dependencies")
	if err != nil {
		return err
	}
	for _, e := range entries {
		set, err := decodeFileIDSet(e.Value)
		if err != nil {
			return err
		}
		if _, ok := set[fileID]; !ok {
			continue
		}
		delete(set, fileID)
		if len(set) == 0 {
			if err := ws.Erase("dependencies", e.Key); err != nil {
				return err
			}
			continue
		}
		if err := ws.Set("dependencies", e.Key, encodeFileIDSet(set)); err != nil {
			return err
		}
	}
	return nil
}
