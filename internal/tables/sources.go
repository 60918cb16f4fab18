package tables

import (
	"time"

	"github.com/codegraph/xrefd/internal/idkey"
	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/types"
)

type sourceWire struct {
	FileID      uint32 `json:"file_id"`
	BuildRootID uint32 `json:"build_root_id"`
	Args        []string `json:"args"`
	Flags       uint32 `json:"flags"`
	Parsed      int64  `json:"parsed_unix_nano"`
}

func sourceToWire(s types.Source) sourceWire {
	return sourceWire{
		FileID:      uint32(s.FileID),
		BuildRootID: uint32(s.BuildRootID),
		Args:        s.Args,
		Flags:       uint32(s.Flags),
		Parsed:      s.Parsed.UnixNano(),
	}
}

func sourceFromWire(w sourceWire) types.Source {
	return types.Source{
		FileID:      types.FileID(w.FileID),
		BuildRootID: types.BuildRootID(w.BuildRootID),
		Args:        w.Args,
		Flags:       types.SourceFlags(w.Flags),
		Parsed:      time.Unix(0, w.Parsed),
	}
}

// GetSource looks up one Source row by its composite key.
func (t *Tables) GetSource(fileID types.FileID, buildRootID types.BuildRootID) (types.Source, bool, error) {
	v, ok, err := t.Sources.Find(idkey.EncodeSourceKey(fileID, buildRootID))
	if err != nil || !ok {
		return types.Source{}, ok, err
	}
	var w sourceWire
	if err := decode(v, &w); err != nil {
		return types.Source{}, false, err
	}
	return sourceFromWire(w), true, nil
}

// GetSourceWS looks up one Source row through ws, seeing that scope's own
// uncommitted writes rather than blocking on the single pooled connection
// the scope's *sql.Tx already holds (store.go's SetMaxOpenConns(1)).
func (t *Tables) GetSourceWS(ws *store.WriteScope, fileID types.FileID, buildRootID types.BuildRootID) (types.Source, bool, error) {
	v, ok, err := ws.Find("sources", idkey.EncodeSourceKey(fileID, buildRootID))
	if err != nil || !ok {
		return types.Source{}, ok, err
	}
	var w sourceWire
	if err := decode(v, &w); err != nil {
		return types.Source{}, false, err
	}
	return sourceFromWire(w), true, nil
}

// SetSource writes a Source row within ws.
func (t *Tables) SetSource(ws *store.WriteScope, s types.Source) error {
	return ws.Set("sources", idkey.EncodeSourceKey(s.FileID, s.BuildRootID), encode(sourceToWire(s)))
}

// EraseSource removes one Source row within ws.
func (t *Tables) EraseSource(ws *store.WriteScope, fileID types.FileID, buildRootID types.BuildRootID) error {
	return ws.Erase("sources", idkey.EncodeSourceKey(fileID, buildRootID))
}

// SourcesForFile returns every Source sharing fileID (the contiguous range
// spec.md §4.4 step 2 scans), ordered by buildRootId.
func (t *Tables) SourcesForFile(fileID types.FileID) ([]types.Source, error) {
	entries, err := t.Sources.Range(idkey.SourceKeyRangeStart(fileID), idkey.SourceKeyRangeEnd(fileID))
	if err != nil {
		return nil, err
	}
	out := make([]types.Source, 0, len(entries))
	for _, e := range entries {
		var w sourceWire
		if err := decode(e.Value, &w); err != nil {
			return nil, err
		}
		out = append(out, sourceFromWire(w))
	}
	return out, nil
}

// SourcesForFileWS is SourcesForFile read through ws instead of the
// committed connection; see GetSourceWS.
func (t *Tables) SourcesForFileWS(ws *store.WriteScope, fileID types.FileID) ([]types.Source, error) {
	entries, err := ws.Range("sources", idkey.SourceKeyRangeStart(fileID), idkey.SourceKeyRangeEnd(fileID))
	if err != nil {
		return nil, err
	}
	out := make([]types.Source, 0, len(entries))
	for _, e := range entries {
		var w sourceWire
		if err := decode(e.Value, &w); err != nil {
			return nil, err
		}
		out = append(out, sourceFromWire(w))
	}
	return out, nil
}

// AllSources returns every Source row in the table, used by remove(match)
// and the initial dirty sweep.
func (t *Tables) AllSources() ([]types.Source, error) {
	entries, err := t.Sources.All()
	if err != nil {
		return nil, err
	}
	out := make([]types.Source, 0, len(entries))
	for _, e := range entries {
		var w sourceWire
		if err := decode(e.Value, &w); err != nil {
			return nil, err
		}
		out = append(out, sourceFromWire(w))
	}
	return out, nil
}

// MarkActive rewrites every Source sharing fileID so that exactly the entry
// with BuildRootID == chosenBuildID carries SourceActive (or none, if
// chosenBuildID == 0), implementing spec.md §4.4's markActive and preserving
// invariant I4.
func (t *Tables) MarkActive(ws *store.WriteScope, fileID types.FileID, chosenBuildID types.BuildRootID) error {
	entries, err := ws.Range("sources", idkey.SourceKeyRangeStart(fileID), idkey.SourceKeyRangeEnd(fileID))
	if err != nil {
		return err
	}
	sources := make([]types.Source, 0, len(entries))
	for _, e := range entries {
		var w sourceWire
		if err := decode(e.Value, &w); err != nil {
			return err
		}
		sources = append(sources, sourceFromWire(w))
	}
	for _, s := range sources {
		want := s.BuildRootID == chosenBuildID && chosenBuildID != 0
		has := s.Flags&types.SourceActive != 0
		if want == has {
			continue
		}
		if want {
			s.Flags |= types.SourceActive
		} else {
			s.Flags &^= types.SourceActive
		}
		if err := t.SetSource(ws, s); err != nil {
			return err
		}
	}
	return nil
}
