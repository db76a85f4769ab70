package cmd

import (
	"context"
	"log/slog"

	"github.com/pseudomuto/scheman/pkg/consts"
	"github.com/pseudomuto/scheman/pkg/report"
	"github.com/pseudomuto/scheman/pkg/watch"
	"github.com/urfave/cli/v3"
)

// watchCmd applies pending migrations, then applies them again whenever a
// file in the migration directory changes. It runs until interrupted.
func watchCmd(p commandParams) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Apply migrations whenever the migration directory changes",
		Flags: append(connectionFlags(), &cli.DurationFlag{
			Name:  "debounce",
			Usage: "quiet period before applying changes",
			Value: consts.DefaultDebounce,
		}),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, err := openSession(ctx, cmd, p)
			if err != nil {
				return err
			}
			defer s.Close()

			w := watch.New(p.Project.Path(s.Config.Dir), func(ctx context.Context) error {
				results, err := s.Executor.Run(ctx)
				return report.Outcome(output(cmd), results, err)
			},
				watch.WithDebounce(cmd.Duration("debounce")),
				watch.WithLogger(slog.Default()),
				watch.WithInitialRun(),
			)

			return w.Run(ctx)
		},
	}
}
