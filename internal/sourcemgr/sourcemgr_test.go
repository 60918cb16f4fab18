package sourcemgr

import (
	"testing"
	"time"

	"github.com/codegraph/xrefd/internal/store"
	"github.com/codegraph/xrefd/internal/tables"
	"github.com/codegraph/xrefd/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *tables.Tables, *store.DB) {
	t.Helper()
	db, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	tb := tables.Open(db)
	return New(tb), tb, db
}

func admit(t *testing.T, db *store.DB, m *Manager, s types.Source) (types.Source, bool) {
	t.Helper()
	ws, err := db.Begin()
	require.NoError(t, err)
	result, changed, err := m.Admit(ws, s)
	require.NoError(t, err)
	require.NoError(t, ws.Commit())
	return result, changed
}

func TestAdmitFirstSourceBecomesActive(t *testing.T) {
	m, tb, db := newTestManager(t)
	s := types.Source{FileID: 1, BuildRootID: 10, Args: []string{"-I.", "a.c"}, Parsed: time.Now()}

	result, changed := admit(t, db, m, s)
	assert.True(t, changed)
	assert.NotZero(t, result.Flags&types.SourceActive)

	stored, ok, err := tb.GetSource(1, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotZero(t, stored.Flags&types.SourceActive)
}

func TestAdmitSecondBuildClearsFirstActive(t *testing.T) {
	m, tb, db := newTestManager(t)
	first := types.Source{FileID: 1, BuildRootID: 10, Args: []string{"-DA"}, Parsed: time.Now()}
	second := types.Source{FileID: 1, BuildRootID: 20, Args: []string{"-DB"}, Parsed: time.Now()}

	admit(t, db, m, first)
	admit(t, db, m, second)

	s1, _, err := tb.GetSource(1, 10)
	require.NoError(t, err)
	s2, _, err := tb.GetSource(1, 20)
	require.NoError(t, err)

	assert.Zero(t, s1.Flags&types.SourceActive)
	assert.NotZero(t, s2.Flags&types.SourceActive)
}

func TestAdmitSameArgsIsNoopButReactivates(t *testing.T) {
	m, tb, db := newTestManager(t)
	s := types.Source{FileID: 1, BuildRootID: 10, Args: []string{"-DA"}, Parsed: time.Now()}
	admit(t, db, m, s)

	other := types.Source{FileID: 1, BuildRootID: 20, Args: []string{"-DB"}, Parsed: time.Now()}
	admit(t, db, m, other)

	// re-admitting the original args should reactivate build 10
	result, changed := admit(t, db, m, types.Source{FileID: 1, BuildRootID: 10, Args: []string{"-DA"}, Parsed: time.Now()})
	assert.True(t, changed)
	assert.NotZero(t, result.Flags&types.SourceActive)

	s1, _, err := tb.GetSource(1, 10)
	require.NoError(t, err)
	s2, _, err := tb.GetSource(1, 20)
	require.NoError(t, err)
	assert.NotZero(t, s1.Flags&types.SourceActive)
	assert.Zero(t, s2.Flags&types.SourceActive)
}

func TestAdmitDisallowMultipleErasesSiblings(t *testing.T) {
	m, tb, db := newTestManager(t)
	m.DisallowMultiple = true

	first := types.Source{FileID: 1, BuildRootID: 10, Args: []string{"-DA"}, Parsed: time.Now()}
	admit(t, db, m, first)

	second := types.Source{FileID: 1, BuildRootID: 20, Args: []string{"-DB"}, Parsed: time.Now()}
	admit(t, db, m, second)

	_, ok, err := tb.GetSource(1, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	s2, ok, err := tb.GetSource(1, 20)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotZero(t, s2.Flags&types.SourceActive)
}
