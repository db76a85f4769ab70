package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pseudomuto/scheman/pkg/project"
	"github.com/urfave/cli/v3"
)

// generate creates the generate command which writes an empty migration
// numbered one above the highest version in the migration directory.
//
// Example usage:
//
//	scheman generate --desc "create users"
//	scheman gen add email to users
func generate(p commandParams) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Create a new migration file",
		ArgsUsage: "[description]",
		Before:    requireConfig(p.Loader),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "desc",
				Usage: "the migration description",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := p.Loader.Config()
			if err != nil {
				return err
			}

			desc := cmd.String("desc")
			if desc == "" {
				desc = strings.Join(cmd.Args().Slice(), " ")
			}

			path, err := p.Project.GenerateMigration(cfg.Dir, desc)
			if err != nil {
				return err
			}

			fmt.Fprintf(output(cmd), "Created %s\n", path)
			return nil
		},
	}
}

// initCmd creates the init command which writes scheman.yaml and the
// migration directory. Existing files are left untouched.
func initCmd(p *project.Project) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new scheman project",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := p.Initialize(); err != nil {
				return err
			}

			dir, err := filepath.Abs(p.Root())
			if err != nil {
				return err
			}

			fmt.Fprintf(output(cmd), "Initialized scheman project in %s\n", dir)
			return nil
		},
	}
}
