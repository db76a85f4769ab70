package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/changelog"
	"github.com/pseudomuto/scheman/pkg/config"
	"github.com/pseudomuto/scheman/pkg/consts"
	"github.com/pseudomuto/scheman/pkg/database"
	"github.com/pseudomuto/scheman/pkg/executor"
	"github.com/pseudomuto/scheman/pkg/project"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	commandParams struct {
		fx.In

		Loader  *config.Loader
		Project *project.Project
	}

	// session is an open connection plus the executor built on it.
	session struct {
		Config   *config.Config
		Executor *executor.Executor
		db       *database.DB
	}
)

// connectionFlags returns the flags that override the database section of
// the configuration file.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "driver",
			Usage:   "database driver (" + joinDrivers() + ")",
			Sources: cli.EnvVars(consts.EnvPrefix + "DB_DRIVER"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "database connection URL",
			Sources: cli.EnvVars(consts.EnvPrefix + "DB_URL"),
			Config:  cli.StringConfig{TrimSpace: true},
		},
		&cli.StringFlag{
			Name:    "user",
			Usage:   "database user",
			Sources: cli.EnvVars(consts.EnvPrefix + "DB_USER"),
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "database password",
			Sources: cli.EnvVars(consts.EnvPrefix + "DB_PASSWORD"),
		},
	}
}

// openSession loads the configuration, applies flag overrides and connects.
// A missing config file is allowed as long as the flags name a database.
func openSession(ctx context.Context, cmd *cli.Command, p commandParams) (*session, error) {
	cfg, err := p.Loader.Config()
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = config.Default()
	}

	merged := *cfg
	overrideString(cmd, "driver", &merged.Database.Driver)
	overrideString(cmd, "url", &merged.Database.URL)
	overrideString(cmd, "user", &merged.Database.User)
	overrideString(cmd, "password", &merged.Database.Password)

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("Connecting to database", "driver", merged.Database.Driver)
	db, err := database.Open(ctx, merged.ConnOptions())
	if err != nil {
		return nil, err
	}

	policy := merged.RetryPolicy()
	policy.Notify = func(err error, next time.Duration) {
		slog.Warn("Retrying database call", "err", err, "in", next)
	}
	conn := database.WithRetry(db, policy)

	store, err := changelog.New(conn, changelog.Options{
		Table:   merged.Table,
		Dialect: db.Dialect(),
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create changelog store")
	}

	return &session{
		Config: &merged,
		Executor: executor.New(executor.Config{
			Conn:           conn,
			Changelog:      store,
			Migrations:     p.Project.Migrations(merged.Dir),
			Logger:         slog.Default(),
			StrictRollback: merged.Rollback.Strict,
		}),
		db: db,
	}, nil
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		slog.Warn("Failed to close database", "err", err)
	}
}

func overrideString(cmd *cli.Command, name string, dst *string) {
	if cmd.IsSet(name) {
		*dst = cmd.String(name)
	}
}

func joinDrivers() string {
	return strings.Join(database.Drivers(), ", ")
}

// output is where command results are written.
func output(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}
