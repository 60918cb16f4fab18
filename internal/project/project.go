// Package project implements the orchestrator state machine spec.md §4.7
// ties every other package to: Unloaded/Loaded/Syncing, job submission and
// completion (§4.5), the sync and dirty timers, watcher event handling
// (§4.9), and the suspend/query surface cmd/xrefd drives.
//
// The event loop is a single goroutine reading closures off one unbuffered
// "mailbox" channel, grounded on the actor-style command channel in
// mvp-joe-project-cortex/internal/indexer/daemon-actor.go (other_examples):
// every exported method that reads or mutates orchestrator state posts a
// closure and blocks on a reply, so state mutation is serialized without a
// second lock guarding activeJobs/indexData/dirtyFiles/etc. VisitFile and
// ReleaseFileIDs guard visitedFiles with their own mutex instead, and the
// query methods read the persistent tables directly.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/codegraph/xrefd/internal/debug"
	"github.com/codegraph/xrefd/internal/dirty"
	"github.com/codegraph/xrefd/internal/fileid"
	"github.com/codegraph/xrefd/internal/interfaces"
	"github.com/codegraph/xrefd/internal/query"
	"github.com/codegraph/xrefd/internal/sourcemgr"
	"github.com/codegraph/xrefd/internal/store"
	syncengine "github.com/codegraph/xrefd/internal/sync"
	"github.com/codegraph/xrefd/internal/tables"
	"github.com/codegraph/xrefd/internal/types"
)

// State is one of the three orchestrator states spec.md §4.7 names.
type State int

const (
	Unloaded State = iota
	Loaded
	Syncing
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Syncing:
		return "syncing"
	default:
		return "unknown"
	}
}

// Config holds the tunables spec.md §4.7/§4.5 leave as defaults.
type Config struct {
	SyncThreshold    int
	SyncTimeout      time.Duration
	DirtyTimeout     time.Duration
	WatchSystemPaths bool
}

// DefaultConfig matches spec.md §4.7's stated defaults.
func DefaultConfig() Config {
	return Config{
		SyncThreshold: 8,
		SyncTimeout:   500 * time.Millisecond,
		DirtyTimeout:  100 * time.Millisecond,
	}
}

// WatchDirFunc registers dir for filesystem watching.
type WatchDirFunc = syncengine.WatchDirFunc

// SyncStatus is the one-line status summary spec.md §6 names.
type SyncStatus struct {
	State         string
	ActiveJobs    int
	PendingJobs   int
	DirtyFiles    int
	Syncing       bool
	LastMerged    int
	LastResolved  int
	HeapAllocMB   float64
	LastStatusMsg string
}

func (s SyncStatus) String() string {
	return fmt.Sprintf("xrefd: %s jobs=%d pending=%d dirty=%d heap=%.1fMB — %s",
		s.State, s.ActiveJobs, s.PendingJobs, s.DirtyFiles, s.HeapAllocMB, s.LastStatusMsg)
}

type pendingCompletion struct {
	job  *interfaces.IndexerJob
	data *types.IndexData
}

// Project is one loaded (or loadable) project-indexing core.
type Project struct {
	mailbox chan func()
	quit    chan struct{}
	wg      sync.WaitGroup

	root      string
	db        *store.DB
	tables    *tables.Tables
	fileids   *fileid.Registry
	scheduler interfaces.JobScheduler
	syncer    *syncengine.Engine
	query     *query.Engine
	sourcemgr *sourcemgr.Manager
	watch     WatchDirFunc
	cfg       Config

	state State

	visitedMu    sync.Mutex
	visitedFiles map[types.FileID]string
	jobVisited   map[types.JobKey]map[types.FileID]struct{}

	activeJobs       map[types.JobKey]*interfaces.IndexerJob
	pendingIndexData map[types.JobKey]pendingCompletion
	pendingJobs      []*interfaces.IndexerJob
	indexData        map[types.JobKey]*types.IndexData
	dirtyFiles       map[types.FileID]struct{}
	pendingDirtyFiles map[types.FileID]struct{}
	suspendedFiles   map[types.FileID]struct{}

	lastJobWasDirty bool
	lastStatus      syncengine.Result

	syncTimer  *time.Timer
	dirtyTimer *time.Timer
}

// pathLookupAdapter adapts *fileid.Registry to sync.PathLookup/query.PathLookup.
type pathLookupAdapter struct{ r *fileid.Registry }

func (a pathLookupAdapter) Path(id types.FileID) (string, bool) { return a.r.Path(id) }

// New constructs a Project rooted at root. The scheduler must already be
// wired with the Indexer and a FileVisitor (this Project itself, via
// VisitFile/ReleaseFileIDs) before being passed in. It starts in
// Unloaded; call Load to open tables and begin accepting jobs.
func New(root string, scheduler interfaces.JobScheduler, watch WatchDirFunc, cfg Config) *Project {
	p := &Project{
		mailbox:           make(chan func()),
		quit:              make(chan struct{}),
		root:              root,
		scheduler:         scheduler,
		watch:             watch,
		cfg:               cfg,
		state:             Unloaded,
		visitedFiles:      map[types.FileID]string{},
		jobVisited:        map[types.JobKey]map[types.FileID]struct{}{},
		activeJobs:        map[types.JobKey]*interfaces.IndexerJob{},
		pendingIndexData:  map[types.JobKey]pendingCompletion{},
		indexData:         map[types.JobKey]*types.IndexData{},
		dirtyFiles:        map[types.FileID]struct{}{},
		pendingDirtyFiles: map[types.FileID]struct{}{},
		suspendedFiles:    map[types.FileID]struct{}{},
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// SetScheduler wires the JobScheduler after construction, for callers that
// build the scheduler with this Project as its FileVisitor (a
// construction-order cycle scheduler/visitor can't avoid otherwise). Call
// once, before Load.
func (p *Project) SetScheduler(s interfaces.JobScheduler) {
	p.scheduler = s
}

// SetWatch wires the WatchDirFunc after construction, for callers that build
// a watch.Watcher with this Project as its EventSink (the same
// construction-order cycle SetScheduler exists for). Call once, before
// Load.
func (p *Project) SetWatch(w WatchDirFunc) {
	p.watch = w
}

func (p *Project) run() {
	defer p.wg.Done()
	for {
		select {
		case fn := <-p.mailbox:
			fn()
		case <-p.quit:
			return
		}
	}
}

// post runs fn on the mailbox goroutine and waits for it to finish,
// serializing every state mutation through the single event loop.
func (p *Project) post(fn func()) {
	reply := make(chan struct{})
	p.mailbox <- func() { fn(); close(reply) }
	<-reply
}

func call[T any](p *Project, fn func() T) T {
	reply := make(chan T, 1)
	p.mailbox <- func() { reply <- fn() }
	return <-reply
}

// Load opens the project database, replays visitedFiles, re-watches
// dependency roots, runs an initial dirty sweep, and transitions to
// Loaded (spec.md §4.7's `load` event).
func (p *Project) Load() error {
	return call(p, func() error {
		if p.state != Unloaded {
			return nil
		}
		db, err := store.Open(p.root)
		if err != nil {
			return err
		}
		tb := tables.Open(db)
		fids := fileid.New(tb.General)
		if err := fids.Load(); err != nil {
			return err
		}

		p.db = db
		p.tables = tb
		p.fileids = fids
		p.syncer = syncengine.New(db, tb, p.watch, pathLookupAdapter{fids})
		p.query = query.New(tb, pathLookupAdapter{fids})
		p.sourcemgr = sourcemgr.New(tb)

		if err := p.replayVisitedFiles(); err != nil {
			return err
		}
		if err := p.rewatchDependencyRoots(); err != nil {
			debug.LogWatch("rewatch on load: %v", err)
		}
		if err := p.initialDirtySweep(); err != nil {
			debug.LogDirty("initial sweep: %v", err)
		}

		p.state = Loaded
		return nil
	})
}

func (p *Project) replayVisitedFiles() error {
	files, err := p.tables.GetVisitedFiles()
	if err != nil {
		return err
	}
	p.visitedMu.Lock()
	defer p.visitedMu.Unlock()
	for id, path := range files {
		p.visitedFiles[types.FileID(id)] = path
	}
	return nil
}

func (p *Project) rewatchDependencyRoots() error {
	if p.watch == nil {
		return nil
	}
	headers, _, err := p.tables.AllDependencies()
	if err != nil {
		return err
	}
	for _, h := range headers {
		path, ok := p.fileids.Path(h)
		if !ok {
			continue
		}
		if err := p.watch(filepath.Dir(path)); err != nil {
			debug.LogWatch("watch %s: %v", path, err)
		}
	}
	return nil
}

// initialDirtySweep dirties every fileId whose Source is active but whose
// own file has vanished or been modified since Source.parsed, or whose
// depended-on headers have (spec.md §3 "Lifecycle").
func (p *Project) initialDirtySweep() error {
	sources, err := p.tables.AllSources()
	if err != nil {
		return err
	}
	checker := dirty.NewIfModifiedDirty(p.tables, pathLookupAdapter{p.fileids}, "")
	for _, s := range sources {
		if s.Flags&types.SourceActive == 0 {
			continue
		}
		if p.ownFileStale(s) || checker.IsDirty(s) {
			p.dirtyFiles[s.FileID] = struct{}{}
		}
	}
	return nil
}

// ownFileStale reports whether source's own file is gone or was modified
// after the last recorded parse, independent of its depended-on headers.
func (p *Project) ownFileStale(s types.Source) bool {
	path, ok := p.fileids.Path(s.FileID)
	if !ok {
		return true
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.ModTime().After(s.Parsed)
}

// Submit implements index(job) (spec.md §4.5/§4.7): if not Loaded, enqueue;
// otherwise run the source-table admission algorithm and hand the job to
// the scheduler.
func (p *Project) Submit(source types.Source, isDirty bool) {
	p.post(func() {
		job := &interfaces.IndexerJob{Source: source, Dirty: isDirty}
		if p.state != Loaded {
			p.pendingJobs = append(p.pendingJobs, job)
			return
		}
		p.admitAndRun(job)
	})
}

func (p *Project) admitAndRun(job *interfaces.IndexerJob) {
	ws, err := p.db.Begin()
	if err != nil {
		debug.LogJob("admit %v: begin: %v", job.Source.Key(), err)
		return
	}
	admitted, _, err := p.sourcemgr.Admit(ws, job.Source)
	if err != nil {
		_ = ws.Rollback()
		debug.LogJob("admit %v: %v", job.Source.Key(), err)
		return
	}
	if err := ws.Commit(); err != nil {
		debug.LogJob("admit %v: commit: %v", job.Source.Key(), err)
		return
	}
	job.Source = admitted

	key := job.Source.Key()
	p.activeJobs[key] = job
	p.jobVisited[key] = map[types.FileID]struct{}{}
	if p.syncTimer != nil {
		p.syncTimer.Stop()
		p.syncTimer = nil
	}

	p.scheduler.Add(job, func(data *types.IndexData) {
		p.post(func() { p.onJobFinished(job, data) })
	})
}

// onJobFinished implements spec.md §4.5's completion algorithm.
func (p *Project) onJobFinished(job *interfaces.IndexerJob, data *types.IndexData) {
	key := job.Source.Key()

	if p.state == Syncing {
		p.pendingIndexData[key] = pendingCompletion{job: job, data: data}
		return
	}

	current, ok := p.activeJobs[key]
	if !ok || current != job {
		debug.LogJob("stale completion for %v dropped", key)
		return
	}
	delete(p.activeJobs, key)
	p.releaseVisited(key)

	if data == nil || !data.Flags.Has(types.FlagComplete) {
		return
	}

	source, ok, err := p.tables.GetSource(job.Source.FileID, job.Source.BuildRootID)
	if err != nil || !ok {
		debug.LogJob("onJobFinished: source %v missing: %v", key, err)
		return
	}
	source.Parsed = data.ParseTime
	ws, err := p.db.Begin()
	if err != nil {
		debug.LogJob("onJobFinished: begin: %v", err)
		return
	}
	if err := p.tables.SetSource(ws, source); err != nil {
		_ = ws.Rollback()
		debug.LogJob("onJobFinished: set source: %v", err)
		return
	}
	if err := ws.Commit(); err != nil {
		debug.LogJob("onJobFinished: commit: %v", err)
		return
	}

	p.indexData[key] = data
	p.lastJobWasDirty = job.Dirty
	debug.LogJob("completed %v (%d symbols)", key, len(data.Symbols))

	if len(p.indexData) >= p.cfg.SyncThreshold {
		p.startSync(true)
		return
	}
	if len(p.activeJobs) == 0 {
		p.armSyncTimer()
	}
}

func (p *Project) releaseVisited(key types.JobKey) {
	p.visitedMu.Lock()
	defer p.visitedMu.Unlock()
	for fileID := range p.jobVisited[key] {
		delete(p.visitedFiles, fileID)
	}
	delete(p.jobVisited, key)
}

func (p *Project) armSyncTimer() {
	if p.syncTimer != nil {
		p.syncTimer.Stop()
	}
	timeout := p.cfg.SyncTimeout
	if p.lastJobWasDirty {
		timeout = 0
	}
	p.syncTimer = time.AfterFunc(timeout, func() {
		p.post(func() {
			if p.state == Loaded {
				p.startSync(true)
			}
		})
	})
}

// Abort implements spec.md §4.5's abort semantics: release visited fileIds
// and remove the job from activeJobs without touching persistent tables.
func (p *Project) Abort(key types.JobKey) {
	p.post(func() {
		if _, ok := p.activeJobs[key]; !ok {
			return
		}
		p.scheduler.Abort(key)
		delete(p.activeJobs, key)
		p.releaseVisited(key)
	})
}

// VisitFile implements interfaces.FileVisitor (spec.md §4.5's visitFile):
// claims fileId for jobKey if unclaimed, mutually exclusive with any other
// visitFile/releaseFileIds call via visitedMu.
func (p *Project) VisitFile(fileID types.FileID, path string, jobKey types.JobKey) bool {
	p.visitedMu.Lock()
	defer p.visitedMu.Unlock()
	if _, claimed := p.visitedFiles[fileID]; claimed {
		return false
	}
	p.visitedFiles[fileID] = path
	if set, ok := p.jobVisited[jobKey]; ok {
		set[fileID] = struct{}{}
	} else {
		p.jobVisited[jobKey] = map[types.FileID]struct{}{fileID: {}}
	}
	return true
}

// ReleaseFileIDs implements interfaces.FileVisitor.
func (p *Project) ReleaseFileIDs(jobKey types.JobKey, fileIDs []types.FileID) {
	p.visitedMu.Lock()
	defer p.visitedMu.Unlock()
	set := p.jobVisited[jobKey]
	for _, id := range fileIDs {
		delete(p.visitedFiles, id)
		if set != nil {
			delete(set, id)
		}
	}
}

// startSync runs the merge protocol. If async, it hands off to a goroutine
// that posts its result back onto the mailbox when done (spec.md §4.6: "at
// most one sync in flight; guarded by the Syncing state"), keeping the
// mailbox responsive to new submissions while the write scope commits. The
// synchronous path (used by Unload, which is itself already running on the
// mailbox goroutine) calls onSynced directly instead of posting, since
// posting from the mailbox goroutine back to itself would deadlock.
func (p *Project) startSync(async bool) {
	if p.syncTimer != nil {
		p.syncTimer.Stop()
		p.syncTimer = nil
	}
	p.state = Syncing

	indexData := p.indexData
	dirtyFiles := p.dirtyFiles
	p.indexData = map[types.JobKey]*types.IndexData{}
	p.dirtyFiles = map[types.FileID]struct{}{}

	p.visitedMu.Lock()
	visitedSnapshot := make(map[types.FileID]string, len(p.visitedFiles))
	for k, v := range p.visitedFiles {
		visitedSnapshot[k] = v
	}
	p.visitedMu.Unlock()

	if async {
		go func() {
			result, err := p.syncer.Sync(indexData, dirtyFiles, visitedSnapshot)
			p.post(func() { p.onSynced(result, err) })
		}()
		return
	}
	result, err := p.syncer.Sync(indexData, dirtyFiles, visitedSnapshot)
	p.onSynced(result, err)
}

// onSynced implements step 8 of spec.md §4.6: transition Syncing -> Loaded
// and replay pendingIndexData then pendingJobs.
func (p *Project) onSynced(result syncengine.Result, err error) {
	p.state = Loaded
	if err != nil {
		debug.LogSync("sync failed: %v", err)
	} else {
		p.lastStatus = result
	}

	pending := p.pendingIndexData
	p.pendingIndexData = map[types.JobKey]pendingCompletion{}
	keys := make([]types.JobKey, 0, len(pending))
	for k := range pending {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].FileID != keys[j].FileID {
			return keys[i].FileID < keys[j].FileID
		}
		return keys[i].BuildRootID < keys[j].BuildRootID
	})
	for _, k := range keys {
		pc := pending[k]
		p.onJobFinished(pc.job, pc.data)
	}

	jobs := p.pendingJobs
	p.pendingJobs = nil
	for _, job := range jobs {
		p.admitAndRun(job)
	}
}

// DirtyTimerFired implements spec.md §4.7's `DirtyTimer fires` event: drain
// pendingDirtyFiles, propagate via WatcherDirty, and submit a dirty job per
// affected, non-suspended fileId (startDirtyJobs).
func (p *Project) DirtyTimerFired() {
	p.post(func() {
		p.dirtyTimer = nil
		p.drainAndStartDirtyJobs()
	})
}

func (p *Project) drainAndStartDirtyJobs() {
	if len(p.pendingDirtyFiles) == 0 {
		return
	}
	modified := make(map[types.FileID]struct{}, len(p.pendingDirtyFiles))
	for id := range p.pendingDirtyFiles {
		modified[id] = struct{}{}
	}
	p.pendingDirtyFiles = map[types.FileID]struct{}{}

	watcher := dirty.NewWatcherDirty(p.tables, pathLookupAdapter{p.fileids}, modified)
	dirtied := watcher.Dirtied()
	for id := range dirtied {
		p.dirtyFiles[id] = struct{}{}
	}
	p.startDirtyJobs(dirtied)
}

func (p *Project) startDirtyJobs(dirtied map[types.FileID]struct{}) {
	for fileID := range dirtied {
		if _, suspended := p.suspendedFiles[fileID]; suspended {
			continue
		}
		sources, err := p.tables.SourcesForFile(fileID)
		if err != nil {
			debug.LogDirty("sources for %d: %v", fileID, err)
			continue
		}
		for _, s := range sources {
			if s.Flags&types.SourceActive == 0 {
				continue
			}
			job := &interfaces.IndexerJob{Source: s, Dirty: true}
			if p.state != Loaded {
				p.pendingJobs = append(p.pendingJobs, job)
				continue
			}
			p.admitAndRun(job)
		}
	}
}

// WatcherEvent implements spec.md §4.7's `watcher: modified/removed` event
// and §4.9's suspend gate: ignored entirely for a suspended file.
func (p *Project) WatcherEvent(fileID types.FileID) {
	p.post(func() {
		if _, suspended := p.suspendedFiles[fileID]; suspended {
			return
		}
		p.pendingDirtyFiles[fileID] = struct{}{}
		p.armDirtyTimer()
	})
}

func (p *Project) armDirtyTimer() {
	if p.dirtyTimer != nil {
		p.dirtyTimer.Stop()
	}
	p.dirtyTimer = time.AfterFunc(p.cfg.DirtyTimeout, p.DirtyTimerFired)
}

// Unload implements spec.md §4.7's `unload` event: from Syncing, reschedule
// after 1s; from Loaded, abort all jobs, final sync, close tables.
func (p *Project) Unload() {
	for {
		done := call(p, func() bool {
			if p.state == Unloaded {
				return true
			}
			if p.state == Syncing {
				return false
			}
			for key := range p.activeJobs {
				p.scheduler.Abort(key)
				delete(p.activeJobs, key)
				p.releaseVisited(key)
			}
			p.startSync(false)
			if err := p.fileids.Save(); err != nil {
				debug.LogJob("unload: save fileid registry: %v", err)
			}
			_ = p.db.Close()
			p.state = Unloaded
			return true
		})
		if done {
			return
		}
		time.Sleep(1 * time.Second)
	}
}

// Shutdown stops the mailbox goroutine. Call after Unload.
func (p *Project) Shutdown() {
	close(p.quit)
	p.wg.Wait()
}

// Suspend/Resume/ClearSuspendedFiles implement the suspend set spec.md §6
// names in its query interface.
func (p *Project) Suspend(fileID types.FileID) {
	p.post(func() { p.suspendedFiles[fileID] = struct{}{} })
}

func (p *Project) Resume(fileID types.FileID) {
	p.post(func() { delete(p.suspendedFiles, fileID) })
}

func (p *Project) ClearSuspendedFiles() {
	p.post(func() { p.suspendedFiles = map[types.FileID]struct{}{} })
}

func (p *Project) SuspendedFiles() []types.FileID {
	return call(p, func() []types.FileID {
		out := make([]types.FileID, 0, len(p.suspendedFiles))
		for id := range p.suspendedFiles {
			out = append(out, id)
		}
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		return out
	})
}

// Locations/Sort/Dependencies/Reindex/Remove run the query primitives
// (spec.md §4.8) against whatever state is currently committed; they don't
// need mailbox serialization for correctness (the underlying tables are
// the source of truth), but Reindex needs to mark files dirty through the
// orchestrator's own dirtyFiles state.
func (p *Project) Locations(symbolName string, fileID types.FileID) ([]types.Location, error) {
	return p.query.Locations(symbolName, fileID)
}

func (p *Project) Sort(locs []types.Location, flags types.SortFlags) ([]types.SortedCursor, error) {
	return p.query.Sort(locs, flags)
}

func (p *Project) Dependencies(fileID types.FileID, mode types.DependencyMode) ([]types.FileID, error) {
	return p.query.Dependencies(fileID, mode)
}

// Reindex implements reindex(match, query) (spec.md §4.8): Reindex mode
// dirties every matching fileId and submits a dirty job for its active
// Source; CheckReindex only dirties files an IfModifiedDirty check
// actually reports modified.
func (p *Project) Reindex(match query.Matcher, mode types.ReindexMode) (int, error) {
	candidates, err := p.query.Reindex(match, mode)
	if err != nil {
		return 0, err
	}
	if mode == types.CheckReindex {
		checker := dirty.NewIfModifiedDirty(p.tables, pathLookupAdapter{p.fileids}, "")
		filtered := map[types.FileID]struct{}{}
		for id := range candidates {
			sources, err := p.tables.SourcesForFile(id)
			if err != nil {
				return 0, err
			}
			for _, s := range sources {
				if s.Flags&types.SourceActive != 0 && checker.IsDirty(s) {
					filtered[id] = struct{}{}
				}
			}
		}
		candidates = filtered
	}
	p.post(func() {
		for id := range candidates {
			p.dirtyFiles[id] = struct{}{}
		}
		p.startDirtyJobs(candidates)
	})
	return len(candidates), nil
}

// Remove implements remove(match) (spec.md §4.8): aborts in-flight jobs for
// matched fileIds before purging their persistent rows.
func (p *Project) Remove(match query.Matcher) (int, error) {
	sources, err := p.tables.AllSources()
	if err != nil {
		return 0, err
	}
	toAbort := map[types.JobKey]struct{}{}
	for _, s := range sources {
		path, ok := p.fileids.Path(s.FileID)
		if !ok || !match(path) {
			continue
		}
		toAbort[s.Key()] = struct{}{}
	}
	p.post(func() {
		for key := range toAbort {
			if _, ok := p.activeJobs[key]; ok {
				p.scheduler.Abort(key)
				delete(p.activeJobs, key)
				p.releaseVisited(key)
			}
		}
	})
	return p.query.Remove(p.db, match)
}

// Status renders the SyncStatus summary spec.md §6 names.
func (p *Project) Status() SyncStatus {
	return call(p, func() SyncStatus {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		return SyncStatus{
			State:         p.state.String(),
			ActiveJobs:    len(p.activeJobs),
			PendingJobs:   len(p.pendingJobs),
			DirtyFiles:    len(p.dirtyFiles) + len(p.pendingDirtyFiles),
			Syncing:       p.state == Syncing,
			LastMerged:    p.lastStatus.Merged,
			LastResolved:  p.lastStatus.ResolvedRefs,
			HeapAllocMB:   float64(mem.HeapAlloc) / (1024 * 1024),
			LastStatusMsg: p.lastStatus.Status,
		}
	})
}

// FileID resolves path to its FileID, registering it if unseen.
func (p *Project) FileID(path string) types.FileID {
	return p.fileids.InsertFile(path)
}

// LookupFileID resolves path to its FileID without registering one, so
// internal/watch can ignore filesystem events for paths nothing has ever
// submitted or depended on.
func (p *Project) LookupFileID(path string) (types.FileID, bool) {
	return p.fileids.FileID(path)
}
