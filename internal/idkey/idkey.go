// Package idkey encodes domain keys (Location, (fileId, buildRootId) pairs,
// bare FileIDs) into raw big-endian byte strings whose lexicographic byte
// order matches the tuple order spec.md requires of the persistent tables.
//
// This generalizes the pair-packing idiom in the teacher's idcodec package
// (which packs a FileID/LocalSymbolID pair into a base-63 *string* for
// human-readable ids) to the one property the storage layer actually needs:
// byte-comparable keys. SQLite's BLOB primary-key ordering is memcmp over
// the raw bytes, so big-endian encoding is what makes `ORDER BY key` agree
// with field-by-field tuple ordering.
package idkey

import (
	"encoding/binary"

	"github.com/codegraph/xrefd/internal/types"
)

// EncodeFileID returns the 4-byte big-endian key used for Dependencies rows.
func EncodeFileID(id types.FileID) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(id))
	return buf
}

// DecodeFileID is the inverse of EncodeFileID.
func DecodeFileID(b []byte) types.FileID {
	return types.FileID(binary.BigEndian.Uint32(b))
}

// EncodeSourceKey returns the 8-byte big-endian composite key for the
// Sources table: (fileId, buildRootId), high 4 bytes fileId, low 4 bytes
// buildRootId, so all Sources for one fileId are contiguous and ordered by
// buildRootId (spec.md §3, "Source").
func EncodeSourceKey(fileID types.FileID, buildRootID types.BuildRootID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], uint32(fileID))
	binary.BigEndian.PutUint32(buf[4:8], uint32(buildRootID))
	return buf
}

// SourceKeyRangeStart returns the lower bound of the contiguous key range
// for all Sources belonging to fileID (buildRootId == 0).
func SourceKeyRangeStart(fileID types.FileID) []byte {
	return EncodeSourceKey(fileID, 0)
}

// SourceKeyRangeEnd returns the exclusive upper bound of that same range:
// the start key of the next fileID.
func SourceKeyRangeEnd(fileID types.FileID) []byte {
	return EncodeSourceKey(fileID+1, 0)
}

// DecodeSourceKey is the inverse of EncodeSourceKey.
func DecodeSourceKey(b []byte) (types.FileID, types.BuildRootID) {
	return types.FileID(binary.BigEndian.Uint32(b[0:4])), types.BuildRootID(binary.BigEndian.Uint32(b[4:8]))
}

// EncodeLocation returns the 12-byte big-endian key for Symbols/Targets/
// References rows: (fileId, line, column).
func EncodeLocation(loc types.Location) []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:4], uint32(loc.FileID))
	binary.BigEndian.PutUint32(buf[4:8], loc.Line)
	binary.BigEndian.PutUint32(buf[8:12], loc.Column)
	return buf
}

// DecodeLocation is the inverse of EncodeLocation.
func DecodeLocation(b []byte) types.Location {
	return types.Location{
		FileID: types.FileID(binary.BigEndian.Uint32(b[0:4])),
		Line:   binary.BigEndian.Uint32(b[4:8]),
		Column: binary.BigEndian.Uint32(b[8:12]),
	}
}

// LocationFileRangeStart/End bound the contiguous key range of all Locations
// belonging to one fileID, used by locations(symbolName, fileId) to confine
// a scan to a single file.
func LocationFileRangeStart(fileID types.FileID) []byte {
	return EncodeLocation(types.Location{FileID: fileID})
}

func LocationFileRangeEnd(fileID types.FileID) []byte {
	return EncodeLocation(types.Location{FileID: fileID + 1})
}
