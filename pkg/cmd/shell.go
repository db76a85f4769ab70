package cmd

import (
	"context"

	"github.com/pseudomuto/scheman/pkg/shell"
	"github.com/urfave/cli/v3"
)

// shellCmd starts the interactive shell against the configured database.
func shellCmd(p commandParams) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive migration shell",
		Flags: connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd, p)
			if err != nil {
				return err
			}
			defer s.Close()

			dir := s.Config.Dir
			return shell.New(shell.Options{
				Migrator: s.Executor,
				Generator: shell.GeneratorFunc(func(description string) (string, error) {
					return p.Project.GenerateMigration(dir, description)
				}),
				In:  cmd.Root().Reader,
				Out: output(cmd),
			}).Run(ctx)
		},
	}
}
