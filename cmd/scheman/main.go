package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pseudomuto/scheman/pkg/cmd"
	"github.com/pseudomuto/scheman/pkg/config"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			func() context.Context { return ctx },
			func() []string { return os.Args },
		),
		fx.Supply(&cmd.Version{
			Version:   version,
			Commit:    commit,
			Timestamp: date,
		}),
		config.Module,
		cmd.Module,
	)

	// The CLI runs inside a start hook, so Start returns once the command
	// has finished.
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	sig := <-app.Wait()
	if err := app.Stop(context.Background()); err != nil {
		log.Print(err)
	}

	stop()
	os.Exit(sig.ExitCode)
}
