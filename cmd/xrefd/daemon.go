package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/codegraph/xrefd/internal/config"
	"github.com/codegraph/xrefd/internal/nullindexer"
	"github.com/codegraph/xrefd/internal/project"
	"github.com/codegraph/xrefd/internal/scheduler"
	"github.com/codegraph/xrefd/internal/watch"
)

const defaultQueueSize = 64

// openProject builds a Project, its WorkerPool, and its Watcher, breaking
// the construction-order cycle between them: Project.New needs a scheduler
// and a WatchDirFunc up front, but the pool needs the Project as its
// FileVisitor and the watcher needs it as its EventSink. SetScheduler/
// SetWatch wire both in after construction, before Load is called.
func openProject(cfg *config.Config) (*project.Project, *watch.Watcher, error) {
	proj := project.New(cfg.Project.Root, nil, nil, project.Config{
		SyncThreshold:    cfg.Sync.Threshold,
		SyncTimeout:      durationMs(cfg.Sync.SyncTimeoutMs),
		DirtyTimeout:     durationMs(cfg.Sync.DirtyTimeoutMs),
		WatchSystemPaths: cfg.Watch.IncludeSystemPaths,
	})

	pool := scheduler.NewWorkerPool(nullindexer.Indexer{}, proj, runtime.NumCPU(), defaultQueueSize)
	proj.SetScheduler(pool)

	var watcher *watch.Watcher
	if cfg.Watch.Enabled {
		w, err := watch.New(watch.Config{
			IncludeSystemPaths: cfg.Watch.IncludeSystemPaths,
			Include:            cfg.Include,
			Exclude:            cfg.Exclude,
			Root:               cfg.Project.Root,
		}, proj)
		if err != nil {
			pool.Shutdown()
			return nil, nil, fmt.Errorf("start watcher: %w", err)
		}
		proj.SetWatch(w.WatchDir)
		watcher = w
	}

	if err := proj.Load(); err != nil {
		pool.Shutdown()
		if watcher != nil {
			watcher.Close()
		}
		return nil, nil, fmt.Errorf("load project: %w", err)
	}
	return proj, watcher, nil
}

func durationMs(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

var watchCommand = &cli.Command{
	Name:  "watch",
	Usage: "load the project, watch it for changes, and block until interrupted",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		proj, watcher, err := openProject(cfg)
		if err != nil {
			return err
		}

		fmt.Printf("xrefd: watching %s\n", cfg.Project.Root)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		fmt.Printf("\nxrefd: received %v, shutting down\n", sig)

		proj.Unload()
		proj.Shutdown()
		if watcher != nil {
			watcher.Close()
		}
		return nil
	},
}
