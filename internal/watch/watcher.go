// Package watch implements spec.md §4.9's watcher policy: on load, watch
// the parent directory of every known dependency; deliver a watcher event
// for any tracked fileId whose path changes or disappears. Coalescing
// multiple events on the same file into one dirty job batch is the
// orchestrator's DirtyTimer, not this package's concern (spec.md §5
// "Watcher events are coalesced by the DirtyTimer").
//
// Grounded directly on the teacher's internal/indexing/watcher.go:
// fsnotify.Watcher plus doublestar-based path filtering, trimmed of the
// teacher's recursive filepath.Walk registration (this module only ever
// watches directories a Dependencies entry actually points into, not a
// whole project tree) and of its batching debouncer (the orchestrator
// already owns that timer).
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/codegraph/xrefd/internal/debug"
	"github.com/codegraph/xrefd/internal/types"
)

// Config controls which paths the watcher pays attention to.
type Config struct {
	// IncludeSystemPaths allows watching directories under the hard-coded
	// system prefixes below. Off by default (spec.md §4.9: "System-path
	// directories are watched only if explicitly enabled").
	IncludeSystemPaths bool
	// Include/Exclude are doublestar glob patterns applied to a changed
	// path (and to its path relative to Root) before it is reported.
	// Empty Include matches everything not excluded.
	Include []string
	Exclude []string
	Root    string
}

func DefaultConfig() Config {
	return Config{}
}

var systemPrefixes = []string{"/usr", "/proc", "/sys", "/dev"}

func isSystemPath(path string) bool {
	for _, prefix := range systemPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// EventSink is the slice of internal/project.Project the watcher needs:
// resolving a changed path to a fileId already known to the project
// (without registering a new one for unrelated filesystem noise) and
// delivering the resulting dirty signal.
type EventSink interface {
	LookupFileID(path string) (types.FileID, bool)
	WatcherEvent(fileID types.FileID)
}

// Watcher wraps an fsnotify.Watcher with the project's include/exclude and
// system-path policy.
type Watcher struct {
	fs   *fsnotify.Watcher
	cfg  Config
	sink EventSink

	mu      sync.Mutex
	watched map[string]struct{}

	quit chan struct{}
	wg   sync.WaitGroup
}

// New creates a Watcher and starts its event-processing goroutine. Call
// Close to stop it.
func New(cfg Config, sink EventSink) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:      fs,
		cfg:     cfg,
		sink:    sink,
		watched: make(map[string]struct{}),
		quit:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// WatchDir registers dir for filesystem notifications. Idempotent: the
// sync engine calls it once per newly discovered dependency root (spec.md
// §4.6 step 6) and project.Load calls it once per existing Dependencies
// entry on startup, so repeat calls for an already-watched directory must
// be cheap no-ops. Matches project.WatchDirFunc.
func (w *Watcher) WatchDir(dir string) error {
	if !w.cfg.IncludeSystemPaths && isSystemPath(dir) {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = struct{}{}
	return nil
}

// Close stops the event loop and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.quit)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.quit:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			debug.LogWatch("watcher error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name

	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.mu.Lock()
		if _, ok := w.watched[path]; ok {
			delete(w.watched, path)
			_ = w.fs.Remove(path)
		}
		w.mu.Unlock()
	}

	if !w.matches(path) {
		return
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		// Removed (or otherwise unreachable); report it if it's a file we
		// actually track, file or directory alike.
		if fileID, ok := w.sink.LookupFileID(path); ok {
			debug.LogWatch("%s removed (fileId %d)", path, fileID)
			w.sink.WatcherEvent(fileID)
		}
		return
	}
	if info.IsDir() {
		// Directory-level add/remove within an already-watched directory:
		// this module only ever watches directories a Dependencies entry
		// names directly, not whole subtrees, so there is nothing further
		// to register here.
		return
	}

	fileID, ok := w.sink.LookupFileID(path)
	if !ok {
		return
	}
	debug.LogWatch("%s modified (fileId %d)", path, fileID)
	w.sink.WatcherEvent(fileID)
}

func (w *Watcher) matches(path string) bool {
	for _, pattern := range w.cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return false
		}
		if rel, err := filepath.Rel(w.cfg.Root, path); err == nil {
			if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
				return false
			}
		}
	}
	if len(w.cfg.Include) == 0 {
		return true
	}
	for _, pattern := range w.cfg.Include {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
		if rel, err := filepath.Rel(w.cfg.Root, path); err == nil {
			if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
				return true
			}
		}
	}
	return false
}

// GlobMatcher builds a query.Matcher (a func(path string) bool, matched
// structurally so this package need not import internal/query) backed by a
// doublestar pattern, for reindex/remove callers that want glob semantics
// instead of an exact-path match. Matches either the absolute path or the
// path relative to root.
func GlobMatcher(root, pattern string) func(path string) bool {
	return func(path string) bool {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
		if rel, err := filepath.Rel(root, path); err == nil {
			if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
				return true
			}
		}
		return false
	}
}
