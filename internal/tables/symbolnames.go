package tables

import (
	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/types"
)

// GetSymbolName returns the location set stored under name, or an empty set.
func (t *Tables) GetSymbolName(name string) (map[types.Location]struct{}, error) {
	v, ok, err := t.SymbolNames.Find([]byte(name))
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[types.Location]struct{}{}, nil
	}
	return decodeLocationSet(v)
}

// UnionSymbolName merges add into the stored set for name within ws.
func (t *Tables) UnionSymbolName(ws *store.WriteScope, name string, add map[types.Location]struct{}) error {
	key := []byte(name)
	v, ok, err := ws.Find("symbolnames", key)
	if err != nil {
		return err
	}
	existing := map[types.Location]struct{}{}
	if ok {
		existing, err = decodeLocationSet(v)
		if err != nil {
			return err
		}
	}
	for loc := range add {
		existing[loc] = struct{}{}
	}
	return ws.Set("symbolnames", key, encodeLocationSet(existing))
}

// There is no per-name erase: the sync purge step removes a dirtied file's
// locations from every row with EraseSymbolNamesForFile (below), which also
// drops a row once its location set is empty.

// PrefixScanSymbolNames returns every (name, locationSet) row whose key
// starts with prefix, in ascending key order — the primitive
// locations() uses for lower_bound(SymbolNames, symbolName) + "scan while
// keys start with symbolName".
func (t *Tables) PrefixScanSymbolNames(prefix string) ([]string, []map[types.Location]struct{}, error) {
	entries, err := t.SymbolNames.Prefix([]byte(prefix))
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(entries))
	sets := make([]map[types.Location]struct{}, 0, len(entries))
	for _, e := range entries {
		set, err := decodeLocationSet(e.Value)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, string(e.Key))
		sets = append(sets, set)
	}
	return names, sets, nil
}

// AllSymbolNames returns every row in ascending key order.
func (t *Tables) AllSymbolNames() ([]string, []map[types.Location]struct{}, error) {
	entries, err := t.SymbolNames.All()
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(entries))
	sets := make([]map[types.Location]struct{}, 0, len(entries))
	for _, e := range entries {
		set, err := decodeLocationSet(e.Value)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, string(e.Key))
		sets = append(sets, set)
	}
	return names, sets, nil
}

// EraseSymbolNamesForFile removes every Location belonging to fileID from
// every SymbolNames row (the table is keyed by name, not by file, so this
// scans the table — invoked only at sync-purge time for dirtied files).
func (t *Tables) EraseSymbolNamesForFile(ws *store.WriteScope, fileID types.FileID) error {
	entries, err := ws.All("symbolnames")
	if err != nil {
		return err
	}
	for _, e := range entries {
		set, err := decodeLocationSet(e.Value)
		if err != nil {
			return err
		}
		changed := false
		for loc := range set {
			if loc.FileID == fileID {
				delete(set, loc)
				changed = true
			}
		}
		if !changed {
			continue
		}
		if len(set) == 0 {
			if err := ws.Erase("symbolnames", e.Key); err != nil {
				return err
			}
			continue
		}
		if err := ws.Set("symbolnames", e.Key, encodeLocationSet(set)); err != nil {
			return err
		}
	}
	return nil
}
