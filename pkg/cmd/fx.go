package cmd

import (
	"github.com/pseudomuto/scheman/pkg/project"
	"github.com/spf13/afero"
	"go.uber.org/fx"
)

var Module = fx.Module("cli",
	fx.Provide(
		newProject,
		fx.Annotate(up, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(down, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(rerun, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(list, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(status, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(generate, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(initCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(shellCmd, fx.ResultTags(`group:"commands"`)),
		fx.Annotate(watchCmd, fx.ResultTags(`group:"commands"`)),
	),
	fx.Invoke(Run),
)

// newProject returns the project in the working directory. The root command
// changes into --dir before any command uses it.
func newProject() *project.Project {
	return project.New(afero.NewOsFs(), ".")
}
