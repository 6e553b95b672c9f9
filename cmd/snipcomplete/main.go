// Package main is the entry point for the snipcomplete CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	snipcli "github.com/NikitaCOEUR/snipcomplete/internal/cli"
	"github.com/NikitaCOEUR/snipcomplete/internal/trace"
	"github.com/NikitaCOEUR/snipcomplete/pkg/version"
)

func main() {
	stopTrace := trace.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()
	stopTrace()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalParams reads the flags shared by every command
func globalParams(cmd *cli.Command) snipcli.Params {
	return snipcli.Params{
		LogLevel:   cmd.String("log-level"),
		ConfigPath: cmd.String("config"),
		BaseURL:    cmd.String("base-url"),
	}
}

func queryCommand(kind, usage string) *cli.Command {
	return &cli.Command{
		Name:      kind,
		Usage:     usage,
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Value: snipcli.DefaultFormat,
				Usage: "Go template applied to each suggestion (sprig functions available)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return snipcli.Query(ctx, snipcli.QueryParams{
				Params: globalParams(cmd),
				Kind:   kind,
				Text:   strings.Join(cmd.Args().Slice(), " "),
				Format: cmd.String("format"),
			})
		},
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "snipcomplete",
		Usage:                 "Tag and snippet autocomplete against a hint service",
		Version:               version.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error), overrides the config",
				Sources: cli.EnvVars("SNIPCOMPLETE_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (yaml, toml or json)",
				Sources: cli.EnvVars("SNIPCOMPLETE_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Scheme and host of the hint service",
				Sources: cli.EnvVars("SNIPCOMPLETE_BASE_URL"),
			},
		},
		Commands: []*cli.Command{
			queryCommand(snipcli.KindTags, "Complete the last tag of a comma separated list"),
			queryCommand(snipcli.KindSearch, "Suggest snippets whose title matches the text"),
			{
				Name:  "interactive",
				Usage: "Start the terminal front-end",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "start",
						Value: snipcli.KindTags,
						Usage: "Pane shown first: tags or search",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return snipcli.Interactive(ctx, snipcli.InteractiveParams{
						Params: globalParams(cmd),
						Start:  cmd.String("start"),
					})
				},
			},
			{
				Name:  "serve",
				Usage: "Run the hint service",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address, overrides server.addr",
						Sources: cli.EnvVars("SNIPCOMPLETE_ADDR"),
					},
					&cli.StringFlag{
						Name:  "db",
						Usage: "SQLite catalog path, in-memory when empty",
					},
					&cli.StringFlag{
						Name:  "seed",
						Usage: "YAML fixture loaded into the catalog at startup",
					},
					&cli.BoolFlag{
						Name:  "cors",
						Usage: "Allow cross-origin requests from any origin",
					},
					&cli.BoolFlag{
						Name:  "access-log",
						Usage: "Write a combined-format access log to stderr",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					params := snipcli.ServeParams{
						Params: globalParams(cmd),
						Addr:   cmd.String("addr"),
						DB:     cmd.String("db"),
						Seed:   cmd.String("seed"),
						CORS:   cmd.Bool("cors"),
						Ready: func(addr string) {
							fmt.Fprintf(os.Stderr, "Listening on http://%s\n", addr)
						},
					}
					if cmd.Bool("access-log") {
						params.AccessLog = os.Stderr
					}
					return snipcli.Serve(ctx, params)
				},
			},
			{
				Name:  "status",
				Usage: "Show the effective configuration and hint service health",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return snipcli.Status(ctx, globalParams(cmd), os.Stdout)
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate a snipcomplete configuration file",
				ArgsUsage: "[config-file]",
				Action: func(_ context.Context, cmd *cli.Command) error {
					configPath := cmd.String("config")
					if cmd.Args().Len() > 0 {
						configPath = cmd.Args().Get(0)
					}
					return snipcli.Validate(configPath, os.Stdout)
				},
			},
			{
				Name:      "schema",
				Usage:     "Display or export the JSON Schema for snipcomplete configuration files",
				ArgsUsage: "[output-file]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (prints to stdout if not specified)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					outputPath := cmd.String("output")
					if outputPath == "" && cmd.Args().Len() > 0 {
						outputPath = cmd.Args().Get(0)
					}
					return snipcli.Schema(outputPath, os.Stdout)
				},
			},
		},
	}
}
