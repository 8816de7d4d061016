package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/corporealshift/driftwatcher/internal"
	"github.com/corporealshift/driftwatcher/internal/command"
	pkgconfig "github.com/corporealshift/driftwatcher/pkg/config"
)

// newEnv loads configuration and builds the environment shared by all
// subcommands. Diagnostics go to stderr so report output on stdout
// stays machine-readable.
func newEnv(cmd *cli.Command) (*command.Env, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.Level(),
	}))
	slog.SetDefault(logger)

	return &command.Env{
		Config: cfg,
		Log:    logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// targetArg returns the positional path argument, defaulting to the
// current directory.
func targetArg(cmd *cli.Command) string {
	if t := cmd.Args().First(); t != "" {
		return t
	}
	return "."
}

func main() {
	cmd := &cli.Command{
		Name:  "drifty",
		Usage: "Track whether documentation still matches the source files it describes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: ".drifty.yaml",
				Value:       ".drifty.yaml",
				Sources:     cli.EnvVars("DRIFTY_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Add a driftwatcher block to a document's frontmatter",
				ArgsUsage: "<doc.md>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := newEnv(cmd)
					if err != nil {
						return err
					}
					doc := cmd.Args().First()
					if doc == "" {
						return fmt.Errorf("usage: drifty init <doc.md>")
					}
					return command.Init(env, doc)
				},
			},
			{
				Name:      "add",
				Usage:     "Track a file, directory, or glob pattern in a document",
				ArgsUsage: "<doc.md> <pattern>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := newEnv(cmd)
					if err != nil {
						return err
					}
					doc, pattern := cmd.Args().Get(0), cmd.Args().Get(1)
					if doc == "" || pattern == "" {
						return fmt.Errorf("usage: drifty add <doc.md> <pattern>")
					}
					return command.Add(env, doc, pattern)
				},
			},
			{
				Name:      "check",
				Usage:     "Scan for drift and interactively accept changes",
				ArgsUsage: "[path]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := newEnv(cmd)
					if err != nil {
						return err
					}
					return command.Check(ctx, env, targetArg(cmd))
				},
			},
			{
				Name:      "report",
				Usage:     "Print every tracked entry's status; exits 1 when problems exist",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: plaintext, json, or yaml",
						Value:   "plaintext",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := newEnv(cmd)
					if err != nil {
						return err
					}
					return command.Report(ctx, env, targetArg(cmd), cmd.String("format"))
				},
			},
			{
				Name:      "validate",
				Usage:     "Check that tracked entries parse, carry hashes, and resolve",
				ArgsUsage: "[path]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := newEnv(cmd)
					if err != nil {
						return err
					}
					return command.Validate(env, targetArg(cmd))
				},
			},
			{
				Name:      "watch",
				Usage:     "Re-scan on filesystem changes and print status transitions",
				ArgsUsage: "[path]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := newEnv(cmd)
					if err != nil {
						return err
					}
					return command.Watch(ctx, env, targetArg(cmd))
				},
			},
			{
				Name:      "serve",
				Usage:     "Serve the drift dashboard API with live SSE updates",
				ArgsUsage: "[path]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := newEnv(cmd)
					if err != nil {
						return err
					}
					return command.Serve(ctx, env, targetArg(cmd))
				},
			},
			{
				Name:      "mcp",
				Usage:     "Serve drift tools over MCP stdio",
				ArgsUsage: "[path]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := newEnv(cmd)
					if err != nil {
						return err
					}
					return command.Mcp(env, targetArg(cmd))
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		// Drift findings are a deliberate non-zero exit, not a failure.
		if errors.Is(err, command.ErrProblemsFound) {
			os.Exit(1)
		}
		slog.Error("drifty error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
