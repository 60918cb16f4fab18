package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codegraph/xrefd/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	byPath map[string]types.FileID
	events []types.FileID
}

func newFakeSink() *fakeSink {
	return &fakeSink{byPath: map[string]types.FileID{}}
}

func (f *fakeSink) LookupFileID(path string) (types.FileID, bool) {
	id, ok := f.byPath[path]
	return id, ok
}

func (f *fakeSink) WatcherEvent(fileID types.FileID) {
	f.events = append(f.events, fileID)
}

func (f *fakeSink) seen(id types.FileID) bool {
	for _, e := range f.events {
		if e == id {
			return true
		}
	}
	return false
}

func TestWatchDirIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(DefaultConfig(), newFakeSink())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WatchDir(dir))
	require.NoError(t, w.WatchDir(dir))
	assert.Len(t, w.watched, 1)
}

func TestWatchDirSkipsSystemPathsUnlessEnabled(t *testing.T) {
	w, err := New(Config{}, newFakeSink())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WatchDir("/proc"))
	assert.Empty(t, w.watched)

	w2, err := New(Config{IncludeSystemPaths: true}, newFakeSink())
	require.NoError(t, err)
	defer w2.Close()
	require.NoError(t, w2.WatchDir("/proc"))
	assert.Contains(t, w2.watched, "/proc")
}

func TestModifiedKnownFileFiresWatcherEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "header.h")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	sink := newFakeSink()
	sink.byPath[path] = 7

	w, err := New(DefaultConfig(), sink)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.WatchDir(dir))

	require.NoError(t, os.WriteFile(path, []byte("new"), 0644))

	require.Eventually(t, func() bool {
		return sink.seen(7)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestUnknownFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noise.txt")

	sink := newFakeSink()
	w, err := New(DefaultConfig(), sink)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.WatchDir(dir))

	require.NoError(t, os.WriteFile(path, []byte("hi"), 0644))
	time.Sleep(200 * time.Millisecond)

	assert.Empty(t, sink.events)
}

func TestExcludePatternSuppressesEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generated.pb.h")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	sink := newFakeSink()
	sink.byPath[path] = 3

	w, err := New(Config{Root: dir, Exclude: []string{"**/*.pb.h"}}, sink)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.WatchDir(dir))

	require.NoError(t, os.WriteFile(path, []byte("new"), 0644))
	time.Sleep(200 * time.Millisecond)

	assert.False(t, sink.seen(3))
}

func TestRemovedFileFiresWatcherEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.h")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	sink := newFakeSink()
	sink.byPath[path] = 9

	w, err := New(DefaultConfig(), sink)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.WatchDir(dir))

	require.NoError(t, os.Remove(path))

	require.Eventually(t, func() bool {
		return sink.seen(9)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestGlobMatcher(t *testing.T) {
	match := GlobMatcher("/proj", "**/*.cpp")
	assert.True(t, match("/proj/src/a.cpp"))
	assert.False(t, match("/proj/src/a.h"))
}
