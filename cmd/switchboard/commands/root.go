package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/switchboard/internal/app"
	"github.com/florianilch/switchboard/internal/observability"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "switchboard",
		Usage: "Multi-account OAuth credential directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:    "service",
				Aliases: []string{"s"},
				Usage:   "service to scope account operations to",
				Value:   app.DefaultConfigService,
			},
			&cli.StringFlag{
				Name:  "storage--type",
				Usage: "account store backend (memory|file|keyring|sqlite)",
				Value: string(app.DefaultConfigStorage),
			},
			&cli.StringFlag{
				Name:  "storage--file",
				Usage: "path to the JSON store document (file backend)",
			},
			&cli.StringFlag{
				Name:  "storage--sqlite",
				Usage: "path or DSN of the store database (sqlite backend)",
			},
			&cli.StringFlag{
				Name:  "storage--keyring",
				Usage: "keyring service namespace (keyring backend)",
			},
		},
		Commands: []*cli.Command{
			accountsCommand(),
			tokenCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// setup loads configuration, instruments logging, and wires the application.
// Every subcommand action starts here.
func setup(cmd *cli.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd.String("config"), cmd, os.Environ)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := observability.Instrument(cfg.LogLevel, string(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}

	application, err := app.New(cfg, newPromptAuthenticator())
	if err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	return application, nil
}
