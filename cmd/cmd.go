// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles config and database setup
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and manage database migrations",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file from the built-in template",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the database and run pending migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.RollbackDatabase,
			},
			{
				Name:  "status",
				Usage: "Show the current migration version",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MigrationStatus,
			},
		},
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the directory HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.StringSliceFlag{
				Name:  "static-token",
				Usage: "Accept TOKEN:EMAIL as a bearer token instead of calling the identity provider (development only)",
			},
		},
		Action: r.Serve,
	}
}

// importCommand runs a bulk founder import from a CSV file
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import founders from a CSV, TSV or XLSX file",
		ArgsUsage: "<file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Validate every row without writing anything",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "What to do with emails that already exist: update or skip (default: import.dedupe_mode)",
			},
			&cli.StringFlag{
				Name:  "actor",
				Usage: "Name recorded in the import history",
				Value: "cli",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write a per-row report (.csv, .json or .md)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the result as JSON",
			},
			&cli.BoolFlag{
				Name:  "fail-on-errors",
				Usage: "Exit with an error when any row failed",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Review a dry run in a terminal UI before importing",
			},
		},
		Action: r.Import,
	}
}

// importsCommand shows import history
func importsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "imports",
		Usage: "Import history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent import runs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only runs with this status (running, completed, failed)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ListImports,
			},
		},
	}
}

// exportCommand writes the directory back out as CSV
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export directory data",
		Commands: []*cli.Command{
			{
				Name:  "founders",
				Usage: "Export founders as an importable CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
						Value:   "founders.csv",
					},
					&cli.BoolFlag{
						Name:  "include-hidden",
						Usage: "Include founders whose profile is hidden",
					},
				},
				Action: r.ExportFounders,
			},
		},
	}
}

// seedCommand fills the skill and hobby vocabularies
func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Seed skills and hobbies from a catalog",
		ArgsUsage: "[skills|hobbies|all]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "kind"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "TOML catalog file (default: built-in catalog)",
			},
		},
		Action: r.Seed,
	}
}

// foundersCommand inspects founders from the terminal
func foundersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "founders",
		Usage: "Founder profile operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List founders",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of founders to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "hidden",
						Usage: "Include hidden profiles",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.ListFounders,
			},
		},
	}
}

// searchCommand searches the directory
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search founders, startups, skills and hobbies",
		ArgsUsage: "<query>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of hits",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}
