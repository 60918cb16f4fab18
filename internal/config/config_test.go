package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPopulatesSyncAndWatchTuning(t *testing.T) {
	cfg := Default("/proj")
	assert.Equal(t, "/proj", cfg.Project.Root)
	assert.Equal(t, 8, cfg.Sync.Threshold)
	assert.Equal(t, 500, cfg.Sync.SyncTimeoutMs)
	assert.Equal(t, 100, cfg.Sync.DirtyTimeoutMs)
	assert.True(t, cfg.Watch.Enabled)
	assert.False(t, cfg.Watch.IncludeSystemPaths)
}

func TestLoadWithoutConfigFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Sync.Threshold)
}

func TestLoadOverlaysKDLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	kdl := `
sync {
    threshold 16
    dirty_timeout_ms 250
}
watch {
    include_system_paths true
}
include {
    "**/*.cpp"
    "**/*.h"
}
exclude {
    "**/build/**"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".xrefd.kdl"), []byte(kdl), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Sync.Threshold)
	assert.Equal(t, 250, cfg.Sync.DirtyTimeoutMs)
	assert.Equal(t, 500, cfg.Sync.SyncTimeoutMs) // untouched, still default
	assert.True(t, cfg.Watch.IncludeSystemPaths)
	assert.Equal(t, []string{"**/*.cpp", "**/*.h"}, cfg.Include)
	assert.Equal(t, []string{"**/build/**"}, cfg.Exclude)
}

func TestLoadResolvesRelativeProjectRootAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".xrefd.kdl"), []byte(`
project {
    root "sub"
}
`), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sub"), cfg.Project.Root)
}
