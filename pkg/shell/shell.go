package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/changelog"
	"github.com/pseudomuto/scheman/pkg/executor"
	"github.com/pseudomuto/scheman/pkg/migrator"
	"github.com/pseudomuto/scheman/pkg/report"
)

// Prompt is printed before every command.
const Prompt = "scheman > "

const clearScreen = "\033[H\033[2J"

const helpText = `Commands:
  up, run               apply pending migrations
  down, rollback        roll back the current migration
  list, ls              list applied migrations
  status, st            compare migration files with the changelog
  generate, gen [desc]  create an empty migration file
  rerun, rr             reapply migrations that changed after they were applied
  clear                 clear the screen
  help, ?               show this help
  exit, quit            leave the shell
`

var errorColor = color.New(color.FgRed, color.Bold)

type (
	// Migrator is the set of executor operations the shell drives.
	Migrator interface {
		Run(ctx context.Context) ([]*executor.ExecutionResult, error)
		Rollback(ctx context.Context) (*executor.ExecutionResult, error)
		CheckDrift(ctx context.Context) ([]*migrator.Migration, error)
		Rerun(ctx context.Context) ([]*executor.ExecutionResult, error)
		ListApplied(ctx context.Context) ([]*changelog.Entry, error)
		Status(ctx context.Context) (*executor.Status, error)
		CurrentVersion(ctx context.Context) (int, error)
	}

	// Generator creates new migration files.
	Generator interface {
		GenerateMigration(description string) (string, error)
	}

	// GeneratorFunc adapts a function to Generator.
	GeneratorFunc func(description string) (string, error)

	// ConfirmFunc asks a yes/no question.
	ConfirmFunc func(prompt string) (bool, error)

	// Options configures a Shell.
	Options struct {
		Migrator  Migrator
		Generator Generator

		// In and Out default to os.Stdin and os.Stdout.
		In  io.Reader
		Out io.Writer

		// Confirm is asked before a rollback. Defaults to a terminal prompt.
		Confirm ConfirmFunc
	}

	// Shell is an interactive loop over a Migrator.
	Shell struct {
		migrator  Migrator
		generator Generator
		in        io.Reader
		out       io.Writer
		confirm   ConfirmFunc
	}

	handler func(ctx context.Context, args []string) error
)

// GenerateMigration implements Generator.
func (f GeneratorFunc) GenerateMigration(description string) (string, error) {
	return f(description)
}

// New creates a Shell.
func New(opts Options) *Shell {
	s := &Shell{
		migrator:  opts.Migrator,
		generator: opts.Generator,
		in:        opts.In,
		out:       opts.Out,
		confirm:   opts.Confirm,
	}

	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.confirm == nil {
		s.confirm = SurveyConfirm
	}

	return s
}

// Run reads commands until exit, quit or the end of the input. Command
// failures are printed and the loop continues. Run returns early only when
// ctx is done or the input cannot be read.
func (s *Shell) Run(ctx context.Context) error {
	commands := s.commands()
	scanner := bufio.NewScanner(s.in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return errors.Wrap(scanner.Err(), "failed to read input")
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		name := strings.ToLower(fields[0])
		switch name {
		case "exit", "quit":
			return nil
		case "help", "?":
			fmt.Fprint(s.out, helpText)
			continue
		case "clear":
			fmt.Fprint(s.out, clearScreen)
			continue
		}

		fn, ok := commands[name]
		if !ok {
			_, _ = errorColor.Fprintf(s.out, "Unknown command: %s\n", fields[0])
			fmt.Fprint(s.out, helpText)
			continue
		}

		if err := fn(ctx, fields[1:]); err != nil {
			_, _ = errorColor.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *Shell) commands() map[string]handler {
	cmds := map[string]handler{}
	register := func(fn handler, names ...string) {
		for _, n := range names {
			cmds[n] = fn
		}
	}

	register(s.up, "up", "run")
	register(s.down, "down", "rollback")
	register(s.list, "list", "ls")
	register(s.status, "status", "st")
	register(s.generate, "generate", "gen")
	register(s.rerun, "rerun", "rr")

	return cmds
}

func (s *Shell) up(ctx context.Context, _ []string) error {
	results, err := s.migrator.Run(ctx)
	return report.Outcome(s.out, results, err)
}

func (s *Shell) down(ctx context.Context, _ []string) error {
	current, err := s.migrator.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	if current > 0 {
		ok, err := s.confirm(fmt.Sprintf("Roll back migration %d?", current))
		if err != nil {
			return err
		}

		if !ok {
			fmt.Fprintln(s.out, "Rollback cancelled.")
			return nil
		}
	}

	result, err := s.migrator.Rollback(ctx)
	if result != nil {
		report.Rollback(s.out, result)
	}

	return err
}

func (s *Shell) list(ctx context.Context, _ []string) error {
	entries, err := s.migrator.ListApplied(ctx)
	if err != nil {
		return err
	}

	return report.Entries(s.out, entries)
}

func (s *Shell) status(ctx context.Context, _ []string) error {
	status, err := s.migrator.Status(ctx)
	if err != nil {
		return err
	}

	return report.Status(s.out, status)
}

func (s *Shell) generate(_ context.Context, args []string) error {
	path, err := s.generator.GenerateMigration(strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Created %s\n", path)
	return nil
}

func (s *Shell) rerun(ctx context.Context, _ []string) error {
	drifted, err := s.migrator.CheckDrift(ctx)
	if err != nil {
		return err
	}

	if len(drifted) == 0 {
		report.Drifted(s.out, nil)
		return nil
	}

	results, err := s.migrator.Rerun(ctx)
	return report.Outcome(s.out, results, err)
}
