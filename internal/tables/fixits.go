package tables

import (
	"fmt"

	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/types"
)

// Fix-it lists don't have their own persistent table in spec.md §3; they
// are keyed off General the same way visitedFiles is, under a
// per-file key, since they are replace-or-clear wholesale per file rather
// than merged like the symbol-family tables.

func fixItsKey(fileID types.FileID) []byte {
	return []byte(fmt.Sprintf("fixits/%d", fileID))
}

type fixItWire struct {
	Start [2]uint32 `json:"start"` // line, column
	End   [2]uint32 `json:"end"`
	Replace string  `json:"replace"`
}

func fixItToWire(f types.FixIt) fixItWire {
	return fixItWire{
		Start:   [2]uint32{uint32(f.Range[0].Line), uint32(f.Range[0].Column)},
		End:     [2]uint32{uint32(f.Range[1].Line), uint32(f.Range[1].Column)},
		Replace: f.Replace,
	}
}

func fixItFromWire(fileID types.FileID, w fixItWire) types.FixIt {
	return types.FixIt{
		Range: [2]types.Location{
			{FileID: fileID, Line: w.Start[0], Column: w.Start[1]},
			{FileID: fileID, Line: w.End[0], Column: w.End[1]},
		},
		Replace: w.Replace,
	}
}

// SetFixIts replaces the fix-it list for fileID, or clears it if fixits is
// empty (spec.md §4.6 step 2, "addFixIts: replace or clear").
func (t *Tables) SetFixIts(ws *store.WriteScope, fileID types.FileID, fixits []types.FixIt) error {
	key := fixItsKey(fileID)
	if len(fixits) == 0 {
		return ws.Erase("general", key)
	}
	wire := make([]fixItWire, len(fixits))
	for i, f := range fixits {
		wire[i] = fixItToWire(f)
	}
	return ws.Set("general", key, encode(wire))
}

// GetFixIts returns the stored fix-it list for fileID, or nil if none.
func (t *Tables) GetFixIts(fileID types.FileID) ([]types.FixIt, error) {
	v, ok, err := t.General.Find(fixItsKey(fileID))
	if err != nil || !ok {
		return nil, err
	}
	var wire []fixItWire
	if err := decode(v, &wire); err != nil {
		return nil, err
	}
	out := make([]types.FixIt, len(wire))
	for i, w := range wire {
		out[i] = fixItFromWire(fileID, w)
	}
	return out, nil
}
