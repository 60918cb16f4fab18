// Command xrefd is the CLI entrypoint for the project-indexing core:
// load a project, watch it for changes, submit files to be indexed, and
// query the resulting symbol graph. Grounded on the teacher's cmd/lci
// command tree (internal/config load-with-overrides, urfave/cli/v2 app
// with global root/include/exclude flags and per-action subcommands).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/codegraph/xrefd/internal/config"
	"github.com/codegraph/xrefd/internal/debug"
)

func main() {
	app := &cli.App{
		Name:  "xrefd",
		Usage: "cross-reference indexing daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "watch include glob (repeatable, overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "watch exclude glob (repeatable, overrides config)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "write a debug trace log under the system temp directory",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "suppress debug output entirely",
			},
		},
		Before: func(c *cli.Context) error {
			debug.SetQuietMode(c.Bool("quiet"))
			if c.Bool("debug") && !c.Bool("quiet") {
				debug.EnableDebug = "true"
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return fmt.Errorf("init debug log: %w", err)
				}
				fmt.Fprintf(os.Stderr, "debug log: %s\n", path)
			}
			return nil
		},
		Commands: []*cli.Command{
			watchCommand,
			indexCommand,
			locationsCommand,
			statusCommand,
			suspendCommand,
			resumeCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "xrefd:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the project root the same way the teacher's
// loadConfigWithOverrides does: read .xrefd.kdl from root, then let CLI
// flags override include/exclude/root.
func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Project.Root = absRoot

	if inc := c.StringSlice("include"); len(inc) > 0 {
		cfg.Include = inc
	}
	if exc := c.StringSlice("exclude"); len(exc) > 0 {
		cfg.Exclude = exc
	}
	return cfg, nil
}
