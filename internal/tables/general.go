package tables

import "github.com/codegraph/xrefd/internal/store"

// visitedFilesVersion tags the General["visitedFiles"] blob so a future
// encoding change can detect and refuse (or migrate) an old payload.
const visitedFilesVersion = 1

type visitedFilesWire struct {
	Version int               `json:"version"`
	Files   map[uint32]string `json:"files"`
}

// GetVisitedFiles loads the persisted visitedFiles map (General["visitedFiles"]).
func (t *Tables) GetVisitedFiles() (map[uint32]string, error) {
	v, ok, err := t.General.Find([]byte("visitedFiles"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[uint32]string{}, nil
	}
	var w visitedFilesWire
	if err := decode(v, &w); err != nil {
		return nil, err
	}
	return w.Files, nil
}

// SetVisitedFiles persists the visitedFiles map within ws (spec.md §4.6 step 7).
func (t *Tables) SetVisitedFiles(ws *store.WriteScope, files map[uint32]string) error {
	w := visitedFilesWire{Version: visitedFilesVersion, Files: files}
	return ws.Set("general", []byte("visitedFiles"), encode(w))
}
