package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/config"
	"github.com/pseudomuto/scheman/pkg/consts"
	"github.com/pseudomuto/scheman/pkg/logging"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Loader     *config.Loader
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run registers a start hook that executes the scheman CLI with the
// provided arguments and shuts the application down with its exit code.
//
// Global Flags:
//   - --dir, -d: Project directory (defaults to current directory)
//   - --config, -c: Configuration file, relative to --dir (defaults to scheman.yaml)
//   - --log-level: Overrides log.level from the configuration file
//
// Before any command runs the working directory is changed to --dir, the
// configuration path is handed to the config.Loader and the default slog
// logger is replaced with one built from the log settings.
//
// Example usage:
//
//	scheman --dir /path/to/app up
//	scheman -c staging.yaml status
func Run(p Params) {
	p.Lifecycle.Append(fx.StartHook(func() {
		if err := newApp(p).Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
			return
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
	}))
}

func newApp(p Params) *cli.Command {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	return &cli.Command{
		Name:  "scheman",
		Usage: "A tool for managing versioned SQL schema migrations",
		Description: `scheman applies numbered SQL migration files to a database, records
every applied version in a changelog table and detects migrations that were
edited after they were applied.`,
		Version: p.Version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "the project directory",
				Value:       ".",
				DefaultText: "Current directory",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "the scheman config file",
				Sources: cli.EnvVars(consts.EnvPrefix + "CONFIG"),
				Value:   consts.DefaultConfigFile,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error)",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := os.Chdir(cmd.String("dir")); err != nil {
				return ctx, err
			}

			p.Loader.SetPath(cmd.String("config"))
			return ctx, setupLogging(cmd, p.Loader)
		},
		Commands: p.Commands,
	}
}

func setupLogging(cmd *cli.Command, loader *config.Loader) error {
	cfg, err := loader.Config()
	if err != nil {
		return err
	}

	opts := logging.Options{Level: cmd.String("log-level"), Writer: cmd.Root().ErrWriter}
	if cfg != nil {
		opts.Format = cfg.Log.Format
		if opts.Level == "" {
			opts.Level = cfg.Log.Level
		}
	}

	logger, err := logging.New(opts)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)
	return nil
}

func requireConfig(loader *config.Loader) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		cfg, err := loader.Config()
		if err != nil {
			return ctx, err
		}

		if cfg == nil {
			return ctx, errors.Errorf("%s not found, run 'scheman init' first", loader.Path())
		}

		return ctx, nil
	}
}
