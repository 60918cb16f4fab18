package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/codegraph/xrefd/internal/project"
	"github.com/codegraph/xrefd/internal/types"
)

// withOpenProject loads cfg's project for the lifetime of fn, then unloads
// and shuts it down, mirroring the one-shot open/act/close shape the
// teacher's non-daemon subcommands use against its IndexServer.
func withOpenProject(c *cli.Context, fn func(*project.Project) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	proj, watcher, err := openProject(cfg)
	if err != nil {
		return err
	}
	defer func() {
		proj.Unload()
		proj.Shutdown()
		if watcher != nil {
			watcher.Close()
		}
	}()
	return fn(proj)
}

var indexCommand = &cli.Command{
	Name:      "index",
	Usage:     "submit a single file to be indexed",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("usage: xrefd index <path>")
		}
		return withOpenProject(c, func(proj *project.Project) error {
			fileID := proj.FileID(c.Args().Get(0))
			proj.Submit(types.Source{FileID: fileID, Flags: types.SourceActive}, false)
			fmt.Println(proj.Status().String())
			return nil
		})
	},
}

var locationsCommand = &cli.Command{
	Name:  "query",
	Usage: "look up and sort the locations a symbol resolves to",
	Subcommands: []*cli.Command{
		{
			Name:      "locations",
			Usage:     "resolve a symbol name to its candidate locations",
			ArgsUsage: "<symbol> [hint-path]",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					return fmt.Errorf("usage: xrefd query locations <symbol> [hint-path]")
				}
				return withOpenProject(c, func(proj *project.Project) error {
					var hint types.FileID
					if c.NArg() > 1 {
						hint = proj.FileID(c.Args().Get(1))
					}
					locs, err := proj.Locations(c.Args().Get(0), hint)
					if err != nil {
						return err
					}
					for _, loc := range locs {
						fmt.Printf("%d:%d:%d\n", loc.FileID, loc.Line, loc.Column)
					}
					return nil
				})
			},
		},
		{
			Name:      "sort",
			Usage:     "resolve a symbol name, then order its locations by declaration rank",
			ArgsUsage: "<symbol> [hint-path]",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "declarations-only",
					Usage: "drop cursors with no declaration target",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					return fmt.Errorf("usage: xrefd query sort <symbol> [hint-path]")
				}
				return withOpenProject(c, func(proj *project.Project) error {
					var hint types.FileID
					if c.NArg() > 1 {
						hint = proj.FileID(c.Args().Get(1))
					}
					locs, err := proj.Locations(c.Args().Get(0), hint)
					if err != nil {
						return err
					}
					var flags types.SortFlags
					if c.Bool("declarations-only") {
						flags |= types.SortDeclarationOnly
					}
					cursors, err := proj.Sort(locs, flags)
					if err != nil {
						return err
					}
					for _, cur := range cursors {
						fmt.Printf("%d:%d:%d\n", cur.Location.FileID, cur.Location.Line, cur.Location.Column)
					}
					return nil
				})
			},
		},
	},
}

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "print a one-line sync status summary",
	Action: func(c *cli.Context) error {
		return withOpenProject(c, func(proj *project.Project) error {
			fmt.Println(proj.Status().String())
			return nil
		})
	},
}

var suspendCommand = &cli.Command{
	Name:      "suspend",
	Usage:     "stop reporting watcher events for a file",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("usage: xrefd suspend <path>")
		}
		return withOpenProject(c, func(proj *project.Project) error {
			proj.Suspend(proj.FileID(c.Args().Get(0)))
			return nil
		})
	},
}

var resumeCommand = &cli.Command{
	Name:      "resume",
	Usage:     "resume reporting watcher events for a file",
	ArgsUsage: "<path>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("usage: xrefd resume <path>")
		}
		return withOpenProject(c, func(proj *project.Project) error {
			proj.Resume(proj.FileID(c.Args().Get(0)))
			return nil
		})
	},
}
