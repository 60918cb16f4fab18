// Package tables wraps the raw byte-oriented internal/store.Table handles
// with the eight typed persistent tables spec.md §3/§6 names: Symbols,
// SymbolNames, Usr, Dependencies, Sources, Targets, References, General.
// Key bytes come from internal/idkey (so iteration order matches tuple
// order); values are JSON-encoded domain records, since — unlike the
// keys — value ordering never matters and JSON keeps the encode/decode
// code small and inspectable on disk while the project is small.
package tables

import (
	"encoding/json"
	"fmt"

	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/types"
)

// Tables bundles handles to all eight persistent tables of one project
// database.
type Tables struct {
	Symbols      *store.Table
	SymbolNames  *store.Table
	Usr          *store.Table
	Dependencies *store.Table
	Sources      *store.Table
	Targets      *store.Table
	References   *store.Table
	General      *store.Table
}

// Open returns handles to every table in db.
func Open(db *store.DB) *Tables {
	return &Tables{
		Symbols:      db.Table("symbols"),
		SymbolNames:  db.Table("symbolnames"),
		Usr:          db.Table("usr"),
		Dependencies: db.Table("dependencies"),
		Sources:      db.Table("sources"),
		Targets:      db.Table("targets"),
		References:   db.Table("references"),
		General:      db.Table("general"),
	}
}

func encode(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// All value types here are plain data structs; a marshal failure
		// means a programming error, not a runtime condition to recover
		// from.
		panic(fmt.Sprintf("tables: encode: %v", err))
	}
	return b
}

func decode(b []byte, v interface{}) error {
	return json.Unmarshal(b, v)
}

// locationSet/locationKindMap are the wire shapes for the set<Location> and
// map<Location,Kind> value types spec.md §3 describes; JSON has no native
// map-with-struct-key support, so they are encoded as slices of pairs.

type locationSet struct {
	Locations []types.Location `json:"locations"`
}

func encodeLocationSet(s map[types.Location]struct{}) []byte {
	ls := locationSet{Locations: make([]types.Location, 0, len(s))}
	for loc := range s {
		ls.Locations = append(ls.Locations, loc)
	}
	return encode(ls)
}

func decodeLocationSet(b []byte) (map[types.Location]struct{}, error) {
	var ls locationSet
	if err := decode(b, &ls); err != nil {
		return nil, err
	}
	out := make(map[types.Location]struct{}, len(ls.Locations))
	for _, loc := range ls.Locations {
		out[loc] = struct{}{}
	}
	return out, nil
}

type locationKindPair struct {
	Location types.Location   `json:"location"`
	Kind     types.SymbolKind `json:"kind"`
}

type locationKindMap struct {
	Pairs []locationKindPair `json:"pairs"`
}

func encodeLocationKindMap(m map[types.Location]types.SymbolKind) []byte {
	lm := locationKindMap{Pairs: make([]locationKindPair, 0, len(m))}
	for loc, kind := range m {
		lm.Pairs = append(lm.Pairs, locationKindPair{Location: loc, Kind: kind})
	}
	return encode(lm)
}

func decodeLocationKindMap(b []byte) (map[types.Location]types.SymbolKind, error) {
	var lm locationKindMap
	if err := decode(b, &lm); err != nil {
		return nil, err
	}
	out := make(map[types.Location]types.SymbolKind, len(lm.Pairs))
	for _, p := range lm.Pairs {
		out[p.Location] = p.Kind
	}
	return out, nil
}

type fileIDSet struct {
	Files []types.FileID `json:"files"`
}

func encodeFileIDSet(s map[types.FileID]struct{}) []byte {
	fs := fileIDSet{Files: make([]types.FileID, 0, len(s))}
	for id := range s {
		fs.Files = append(fs.Files, id)
	}
	return encode(fs)
}

func decodeFileIDSet(b []byte) (map[types.FileID]struct{}, error) {
	var fs fileIDSet
	if err := decode(b, &fs); err != nil {
		return nil, err
	}
	out := make(map[types.FileID]struct{}, len(fs.Files))
	for _, id := range fs.Files {
		out[id] = struct{}{}
	}
	return out, nil
}

