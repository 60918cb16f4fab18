// Package config loads the project-level configuration this module's
// daemon runs with: sync/dirty timer tuning, watch mode, and include/
// exclude globs. Grounded on the teacher's internal/config, trimmed down
// from its search-ranking/semantic-scoring/feature-flag fields (out of
// scope for a project-indexing core) to the fields internal/project and
// internal/watch actually consume.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config is the full configuration for one project.
type Config struct {
	Version int
	Project Project
	Sync    Sync
	Watch   Watch
	Include []string
	Exclude []string
}

type Project struct {
	Root string
}

// Sync tunes the orchestrator's SyncTimer/DirtyTimer and sync threshold
// (spec.md §4.5/§4.7).
type Sync struct {
	Threshold      int
	SyncTimeoutMs  int
	DirtyTimeoutMs int
}

// Watch tunes spec.md §4.9's watcher policy.
type Watch struct {
	Enabled            bool
	DebounceMs         int
	IncludeSystemPaths bool
}

// Default returns the built-in configuration for a project rooted at root.
// If root is empty, the current working directory is used.
func Default(root string) *Config {
	if root == "" {
		if cwd, err := os.Getwd(); err == nil {
			root = cwd
		} else {
			root = "."
		}
	}
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Sync: Sync{
			Threshold:      8,
			SyncTimeoutMs:  500,
			DirtyTimeoutMs: 100,
		},
		Watch: Watch{
			Enabled:    true,
			DebounceMs: 100,
		},
		Include: []string{},
		Exclude: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/vendor/**",
			"**/build/**",
			"**/dist/**",
		},
	}
}

// Load reads .xrefd.kdl from root, overlaying it onto Default(root). A
// missing config file is not an error: the defaults stand alone.
func Load(root string) (*Config, error) {
	cfg := Default(root)

	path := filepath.Join(root, ".xrefd.kdl")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := parseKDL(string(content), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(root, cfg.Project.Root))
	}
	return cfg, nil
}
