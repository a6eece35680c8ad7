// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and prepare the counter store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead of applying pending ones",
			},
		},
		Action: r.Setup,
	}
}

func productsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "products",
		Aliases: []string{"ls"},
		Usage:   "List catalog products and their last issued number",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Products,
	}
}

func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate a batch of sequential codes and export it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "product",
				Aliases:  []string{"p"},
				Usage:    "Product code from the catalog",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "quantity",
				Aliases:  []string{"n"},
				Usage:    "Number of codes to generate",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "company",
				Usage: "Company name (defaults to company.name from the config)",
			},
			&cli.StringFlag{
				Name:  "count",
				Usage: "Count field",
			},
			&cli.StringFlag{
				Name:  "lot",
				Usage: "Lot field",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Date field",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: pdf, csv, markdown, txt, json or none",
				Value:   "pdf",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (csv uses it as a base name)",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Open the exported PDF with the system viewer",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the batch as JSON",
			},
		},
		Action: r.Generate,
	}
}

func countersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "counters",
		Usage: "Inspect and adjust persisted counters",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show the stored counter for every product",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CountersList,
			},
			{
				Name:  "set",
				Usage: "Raise a product's last issued number",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "product",
					},
					&cli.StringArg{
						Name: "last",
					},
				},
				Action: r.CountersSet,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded batches and optionally re-export them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "product",
				Aliases: []string{"p"},
				Usage:   "Only show batches for this product code",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of batches to return",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Export every listed batch into this directory",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: pdf, csv, markdown, txt or json",
				Value:   "pdf",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

func decodeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "Split a generated code back into its fields",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "code",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Decode,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive terminal UI",
		Action: r.TUI,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the browser form for generating and printing barcodes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}
