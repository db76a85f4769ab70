package cmd

import (
	"context"

	"github.com/pseudomuto/scheman/pkg/report"
	"github.com/urfave/cli/v3"
)

func list(p commandParams) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List applied migrations",
		Flags:   connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd, p)
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.Executor.ListApplied(ctx)
			if err != nil {
				return err
			}

			return report.Entries(output(cmd), entries)
		},
	}
}

// status creates the status command, which compares the migration directory
// with the changelog. Every version is shown as applied, pending, drifted,
// ignored (older than the current version but never applied) or missing
// (applied but no longer on disk).
func status(p commandParams) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show migration status",
		Flags: connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd, p)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.Executor.Status(ctx)
			if err != nil {
				return err
			}

			return report.Status(output(cmd), st)
		},
	}
}
