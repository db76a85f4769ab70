package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/scheman/pkg/report"
	"github.com/pseudomuto/scheman/pkg/shell"
	"github.com/urfave/cli/v3"
)

// up creates the up command for applying pending migrations.
//
// Migrations above the current changelog version are applied in ascending
// order. Applied migrations whose up script changed are reported as drifted
// and left alone, and versions below the current one that were never applied
// are reported as ignored. Execution stops at the first failure.
//
// Example usage:
//
//	scheman up
//	scheman up --driver postgres --url postgres://localhost:5432/app
func up(p commandParams) *cli.Command {
	return &cli.Command{
		Name:    "up",
		Aliases: []string{"run"},
		Usage:   "Apply pending migrations",
		Flags:   connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd, p)
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := s.Executor.Run(ctx)
			return report.Outcome(output(cmd), results, err)
		},
	}
}

// down creates the down command which rolls back the current migration.
func down(p commandParams) *cli.Command {
	return &cli.Command{
		Name:    "down",
		Aliases: []string{"rollback"},
		Usage:   "Roll back the most recently applied migration",
		Flags: append(connectionFlags(), &cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "skip the confirmation prompt",
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd, p)
			if err != nil {
				return err
			}
			defer s.Close()

			current, err := s.Executor.CurrentVersion(ctx)
			if err != nil {
				return err
			}

			if current > 0 && !cmd.Bool("yes") {
				ok, err := shell.SurveyConfirm(fmt.Sprintf("Roll back version %d?", current))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			result, err := s.Executor.Rollback(ctx)
			if result != nil {
				report.Rollback(output(cmd), result)
			}
			return err
		},
	}
}

// rerun creates the rerun command which reapplies drifted migrations.
func rerun(p commandParams) *cli.Command {
	return &cli.Command{
		Name:    "rerun",
		Aliases: []string{"rr"},
		Usage:   "Reapply migrations whose up script changed after they were applied",
		Flags:   connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd, p)
			if err != nil {
				return err
			}
			defer s.Close()

			drifted, err := s.Executor.CheckDrift(ctx)
			if err != nil {
				return err
			}

			report.Drifted(output(cmd), drifted)
			if len(drifted) == 0 {
				return nil
			}

			results, err := s.Executor.Rerun(ctx)
			return report.Outcome(output(cmd), results, err)
		},
	}
}
