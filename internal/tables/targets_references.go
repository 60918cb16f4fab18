package tables

import (
	"github.com/codegraph/xrefd/internal/idkey"
	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/types"
)

// GetTargets returns Targets[loc]: the definition sites loc may resolve to.
func (t *Tables) GetTargets(loc types.Location) (map[types.Location]types.SymbolKind, error) {
	v, ok, err := t.Targets.Find(idkey.EncodeLocation(loc))
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[types.Location]types.SymbolKind{}, nil
	}
	return decodeLocationKindMap(v)
}

// GetReferences returns References[loc]: the use sites that resolve to loc.
func (t *Tables) GetReferences(loc types.Location) (map[types.Location]struct{}, error) {
	v, ok, err := t.References.Find(idkey.EncodeLocation(loc))
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[types.Location]struct{}{}, nil
	}
	return decodeLocationSet(v)
}

// CommitTargets implements spec.md §4.6 step 5 for the Targets table: if the
// table had no value for loc, write add; else union with the existing value
// and write back only if the union is strictly larger.
func (t *Tables) CommitTargets(ws *store.WriteScope, loc types.Location, add map[types.Location]types.SymbolKind) error {
	key := idkey.EncodeLocation(loc)
	v, ok, err := ws.Find("targets", key)
	if !ok || err != nil {
		if err != nil {
			return err
		}
		return ws.Set("targets", key, encodeLocationKindMap(add))
	}
	existing, err := decodeLocationKindMap(v)
	if err != nil {
		return err
	}
	before := len(existing)
	for to, kind := range add {
		existing[to] = kind
	}
	if len(existing) == before {
		return nil
	}
	return ws.Set("targets", key, encodeLocationKindMap(existing))
}

// CommitReferences is CommitTargets' mirror for the References table.
func (t *Tables) CommitReferences(ws *store.WriteScope, loc types.Location, add map[types.Location]struct{}) error {
	key := idkey.EncodeLocation(loc)
	v, ok, err := ws.Find("references", key)
	if !ok || err != nil {
		if err != nil {
			return err
		}
		return ws.Set("references", key, encodeLocationSet(add))
	}
	existing, err := decodeLocationSet(v)
	if err != nil {
		return err
	}
	before := len(existing)
	for from := range add {
		existing[from] = struct{}{}
	}
	if len(existing) == before {
		return nil
	}
	return ws.Set("references", key, encodeLocationSet(existing))
}

// EraseTargetsForFile and EraseReferencesForFile remove every Targets/
// References row keyed by a Location in fileID (spec.md §4.6 step 1 dirty
// purge).
func (t *Tables) EraseTargetsForFile(ws *store.WriteScope, fileID types.FileID) error {
	return ws.EraseRange("targets", idkey.LocationFileRangeStart(fileID), idkey.LocationFileRangeEnd(fileID))
}

func (t *Tables) EraseReferencesForFile(ws *store.WriteScope, fileID types.FileID) error {
	return ws.EraseRange("references", idkey.LocationFileRangeStart(fileID), idkey.LocationFileRangeEnd(fileID))
}
