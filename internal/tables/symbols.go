package tables

import (
	"github.com/codegraph/xrefd/internal/idkey"
	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/types"
)

type symbolWire struct {
	SymbolLength uint32           `json:"symbol_length"`
	SymbolName   string           `json:"symbol_name"`
	Kind         types.SymbolKind `json:"kind"`
	Type         string           `json:"type"`
	EnumValue    *int64           `json:"enum_value,omitempty"`
	Targets      []types.Location `json:"targets"`
	References   []types.Location `json:"references"`
	StartLine    uint32           `json:"start_line"`
	StartColumn  uint32           `json:"start_column"`
	EndLine      uint32           `json:"end_line"`
	EndColumn    uint32           `json:"end_column"`
	Definition   bool             `json:"definition"`
}

func toWire(s *types.SymbolInfo) symbolWire {
	w := symbolWire{
		SymbolLength: s.SymbolLength,
		SymbolName:   s.SymbolName,
		Kind:         s.Kind,
		Type:         s.Type,
		EnumValue:    s.EnumValue,
		StartLine:    s.StartLine,
		StartColumn:  s.StartColumn,
		EndLine:      s.EndLine,
		EndColumn:    s.EndColumn,
		Definition:   s.Definition,
	}
	for loc := range s.Targets {
		w.Targets = append(w.Targets, loc)
	}
	for loc := range s.References {
		w.References = append(w.References, loc)
	}
	return w
}

func fromWire(w symbolWire) *types.SymbolInfo {
	s := &types.SymbolInfo{
		SymbolLength: w.SymbolLength,
		SymbolName:   w.SymbolName,
		Kind:         w.Kind,
		Type:         w.Type,
		EnumValue:    w.EnumValue,
		StartLine:    w.StartLine,
		StartColumn:  w.StartColumn,
		EndLine:      w.EndLine,
		EndColumn:    w.EndColumn,
		Definition:   w.Definition,
		Targets:      make(map[types.Location]struct{}, len(w.Targets)),
		References:   make(map[types.Location]struct{}, len(w.References)),
	}
	for _, loc := range w.Targets {
		s.Targets[loc] = struct{}{}
	}
	for _, loc := range w.References {
		s.References[loc] = struct{}{}
	}
	return s
}

// GetSymbol looks up the symbol record at loc.
func (t *Tables) GetSymbol(loc types.Location) (*types.SymbolInfo, bool, error) {
	v, ok, err := t.Symbols.Find(idkey.EncodeLocation(loc))
	if err != nil || !ok {
		return nil, ok, err
	}
	var w symbolWire
	if err := decode(v, &w); err != nil {
		return nil, false, err
	}
	return fromWire(w), true, nil
}

// SetSymbol writes a symbol record within ws.
func (t *Tables) SetSymbol(ws *store.WriteScope, loc types.Location, info *types.SymbolInfo) error {
	return ws.Set("symbols", idkey.EncodeLocation(loc), encode(toWire(info)))
}

// EraseSymbolsForFile removes every Symbols row belonging to fileID.
func (t *Tables) EraseSymbolsForFile(ws *store.WriteScope, fileID types.FileID) error {
	return ws.EraseRange("symbols", idkey.LocationFileRangeStart(fileID), idkey.LocationFileRangeEnd(fileID))
}

// SymbolsInFile returns every (Location, SymbolInfo) confined to fileID, in
// Location order, used by locations(name, fileID).
func (t *Tables) SymbolsInFile(fileID types.FileID) ([]types.Location, []*types.SymbolInfo, error) {
	entries, err := t.Symbols.Range(idkey.LocationFileRangeStart(fileID), idkey.LocationFileRangeEnd(fileID))
	if err != nil {
		return nil, nil, err
	}
	return decodeSymbolEntries(entries)
}

// AllSymbols returns every (Location, SymbolInfo) row in the table, used by
// locations("", 0).
func (t *Tables) AllSymbols() ([]types.Location, []*types.SymbolInfo, error) {
	entries, err := t.Symbols.All()
	if err != nil {
		return nil, nil, err
	}
	return decodeSymbolEntries(entries)
}

func decodeSymbolEntries(entries []store.Entry) ([]types.Location, []*types.SymbolInfo, error) {
	locs := make([]types.Location, 0, len(entries))
	infos := make([]*types.SymbolInfo, 0, len(entries))
	for _, e := range entries {
		var w symbolWire
		if err := decode(e.Value, &w); err != nil {
			return nil, nil, err
		}
		locs = append(locs, idkey.DecodeLocation(e.Key))
		infos = append(infos, fromWire(w))
	}
	return locs, infos, nil
}
