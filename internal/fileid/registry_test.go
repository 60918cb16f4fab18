package fileid

import (
	"testing"

	"github.com/codegraph/xrefd/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertFileAssignsStableIDs(t *testing.T) {
	r := New(openTestDB(t).Table("general"))

	a := r.InsertFile("/a.c")
	b := r.InsertFile("/b.c")
	again := r.InsertFile("/a.c")

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)

	path, ok := r.Path(a)
	assert.True(t, ok)
	assert.Equal(t, "/a.c", path)

	id, ok := r.FileID("/b.c")
	assert.True(t, ok)
	assert.Equal(t, b, id)

	_, ok = r.FileID("/missing.c")
	assert.False(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	r := New(db.Table("general"))
	r.InsertFile("/a.c")
	r.InsertFile("/b.c")
	require.NoError(t, r.Save())

	r2 := New(db.Table("general"))
	require.NoError(t, r2.Load())

	id, ok := r2.FileID("/a.c")
	assert.True(t, ok)
	origID, _ := r.FileID("/a.c")
	assert.Equal(t, origID, id)

	next := r2.InsertFile("/c.c")
	assert.NotEqual(t, next, id)
}

func TestLoadOnEmptyRegistryIsNoop(t *testing.T) {
	r := New(openTestDB(t).Table("general"))
	require.NoError(t, r.Load())
	_, ok := r.FileID("/anything.c")
	assert.False(t, ok)
}
