package tables

import (
	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/types"
)

// GetUsr returns the location->kind map stored under usr.
func (t *Tables) GetUsr(usr string) (map[types.Location]types.SymbolKind, error) {
	v, ok, err := t.Usr.Find([]byte(usr))
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[types.Location]types.SymbolKind{}, nil
	}
	return decodeLocationKindMap(v)
}

// GetUsrWS is GetUsr read through ws, so it sees USRs this same scope has
// already merged via UnionUsr rather than blocking on the committed
// connection (store.go's SetMaxOpenConns(1) pins it to this scope's tx).
func (t *Tables) GetUsrWS(ws *store.WriteScope, usr string) (map[types.Location]types.SymbolKind, error) {
	v, ok, err := ws.Find("usr", []byte(usr))
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[types.Location]types.SymbolKind{}, nil
	}
	return decodeLocationKindMap(v)
}

// UnionUsr merges add into the stored map for usr within ws.
func (t *Tables) UnionUsr(ws *store.WriteScope, usr string, add map[types.Location]types.SymbolKind) error {
	key := []byte(usr)
	v, ok, err := ws.Find("usr", key)
	if err != nil {
		return err
	}
	existing := map[types.Location]types.SymbolKind{}
	if ok {
		existing, err = decodeLocationKindMap(v)
		if err != nil {
			return err
		}
	}
	for loc, kind := range add {
		existing[loc] = kind
	}
	return ws.Set("usr", key, encodeLocationKindMap(existing))
}

// AllUsr returns every (usr, locationKindMap) row, used by joinCursors
// (spec.md §4.6 step 3) to find every USR with 2+ locations.
func (t *Tables) AllUsr() ([]string, []map[types.Location]types.SymbolKind, error) {
	entries, err := t.Usr.All()
	if err != nil {
		return nil, nil, err
	}
	usrs := make([]string, 0, len(entries))
	maps := make([]map[types.Location]types.SymbolKind, 0, len(entries))
	for _, e := range entries {
		m, err := decodeLocationKindMap(e.Value)
		if err != nil {
			return nil, nil, err
		}
		usrs = append(usrs, string(e.Key))
		maps = append(maps, m)
	}
	return usrs, maps, nil
}

// AllUsrWS is AllUsr read through ws; see GetUsrWS.
func (t *Tables) AllUsrWS(ws *store.WriteScope) ([]string, []map[types.Location]types.SymbolKind, error) {
	entries, err := ws.All("usr")
	if err != nil {
		return nil, nil, err
	}
	usrs := make([]string, 0, len(entries))
	maps := make([]map[types.Location]types.SymbolKind, 0, len(entries))
	for _, e := range entries {
		m, err := decodeLocationKindMap(e.Value)
		if err != nil {
			return nil, nil, err
		}
		usrs = append(usrs, string(e.Key))
		maps = append(maps, m)
	}
	return usrs, maps, nil
}

// EraseUsrForFile removes every Location belonging to fileID from every
// Usr row (the table is keyed by USR string, not by file, so this scans
// the table — invoked only at sync-purge time for dirtied files, like
// EraseSymbolNamesForFile).
func (t *Tables) EraseUsrForFile(ws *store.WriteScope, fileID types.FileID) error {
	entries, err := ws.All("usr")
	if err != nil {
		return err
	}
	for _, e := range entries {
		m, err := decodeLocationKindMap(e.Value)
		if err != nil {
			return err
		}
		changed := false
		for loc := range m {
			if loc.FileID == fileID {
				delete(m, loc)
				changed = true
			}
		}
		if !changed {
			continue
		}
		if len(m) == 0 {
			if err := ws.Erase("usr", e.Key); err != nil {
				return err
			}
			continue
		}
		if err := ws.Set("usr", e.Key, encodeLocationKindMap(m)); err != nil {
			return err
		}
	}
	return nil
}
