package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pseudomuto/scheman/pkg/config"
	"github.com/pseudomuto/scheman/pkg/consts"
	"github.com/pseudomuto/scheman/pkg/project"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fixture struct {
	dir    string
	loader *config.Loader
	params commandParams
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	loader := config.NewLoader()
	loader.SetPath(filepath.Join(dir, consts.DefaultConfigFile))

	return &fixture{
		dir:    dir,
		loader: loader,
		params: commandParams{
			Loader:  loader,
			Project: project.New(afero.NewOsFs(), dir),
		},
	}
}

func (f *fixture) writeConfig(t *testing.T) {
	t.Helper()

	cfg := "database:\n" +
		"  driver: sqlite\n" +
		"  url: " + filepath.Join(f.dir, "app.sqlite3") + "\n" +
		"dir: migrations\n"

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, consts.DefaultConfigFile), []byte(cfg), consts.ModeFile))
	f.loader.SetPath(filepath.Join(f.dir, consts.DefaultConfigFile))
}

func (f *fixture) writeMigration(t *testing.T, name, contents string) {
	t.Helper()

	dir := filepath.Join(f.dir, "migrations")
	require.NoError(t, os.MkdirAll(dir, consts.ModeDir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), consts.ModeFile))
}

func runCommand(t *testing.T, command *cli.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := &cli.Command{
		Name:      "test",
		Writer:    &out,
		ErrWriter: io.Discard,
		Commands:  []*cli.Command{command},
	}

	err := app.Run(context.Background(), append([]string{"test", command.Name}, args...))
	return out.String(), err
}

func TestInitCommand(t *testing.T) {
	f := newFixture(t)

	out, err := runCommand(t, initCmd(f.params.Project))
	require.NoError(t, err)
	require.Contains(t, out, "Initialized scheman project in "+f.dir)

	require.FileExists(t, filepath.Join(f.dir, consts.DefaultConfigFile))
	require.DirExists(t, filepath.Join(f.dir, consts.DefaultDir))

	cfg, err := config.LoadConfigFile(filepath.Join(f.dir, consts.DefaultConfigFile))
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, consts.DefaultDir, cfg.Dir)

	t.Run("is idempotent", func(t *testing.T) {
		custom := []byte("database:\n  driver: postgres\n")
		require.NoError(t, os.WriteFile(filepath.Join(f.dir, consts.DefaultConfigFile), custom, consts.ModeFile))

		_, err := runCommand(t, initCmd(f.params.Project))
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(f.dir, consts.DefaultConfigFile))
		require.NoError(t, err)
		require.Equal(t, custom, data)
	})
}

func TestGenerateCommand(t *testing.T) {
	t.Run("requires config", func(t *testing.T) {
		f := newFixture(t)

		_, err := runCommand(t, generate(f.params), "--desc", "create users")
		require.ErrorContains(t, err, "not found, run 'scheman init' first")
	})

	t.Run("numbers migrations sequentially", func(t *testing.T) {
		f := newFixture(t)
		f.writeConfig(t)

		out, err := runCommand(t, generate(f.params), "--desc", "create users")
		require.NoError(t, err)
		require.Contains(t, out, "001_create_users.sql")

		out, err = runCommand(t, generate(f.params), "add", "email")
		require.NoError(t, err)
		require.Contains(t, out, "002_add_email.sql")

		require.FileExists(t, filepath.Join(f.dir, "migrations", "001_create_users.sql"))
		require.FileExists(t, filepath.Join(f.dir, "migrations", "002_add_email.sql"))
	})
}

func TestMigrationCommands(t *testing.T) {
	f := newFixture(t)
	f.writeConfig(t)
	f.writeMigration(t, "001_create_users.sql", `-- @version 1
-- @desc create users
-- @up
CREATE TABLE users(id INT);
-- @down
DROP TABLE users;
`)
	f.writeMigration(t, "002_add_email.sql", `-- @version 2
-- @desc add email
-- @up
ALTER TABLE users ADD COLUMN email TEXT;
-- @down
ALTER TABLE users DROP COLUMN email;
`)

	out, err := runCommand(t, up(f.params))
	require.NoError(t, err)
	require.Contains(t, out, "Summary: 2 applied, 0 failed, 0 skipped, 0 drifted, 0 ignored")

	out, err = runCommand(t, up(f.params))
	require.NoError(t, err)
	require.Contains(t, out, "Summary: 0 applied, 0 failed, 2 skipped, 0 drifted, 0 ignored")

	out, err = runCommand(t, list(f.params))
	require.NoError(t, err)
	require.Contains(t, out, "create users")
	require.Contains(t, out, "add email")

	out, err = runCommand(t, status(f.params))
	require.NoError(t, err)
	require.Contains(t, out, "Current version: 2")
	require.Contains(t, out, "Summary: 2 applied, 0 pending, 0 drifted, 0 ignored, 0 missing")

	out, err = runCommand(t, rerun(f.params))
	require.NoError(t, err)
	require.Contains(t, out, "No drifted migrations.")

	out, err = runCommand(t, down(f.params), "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "Rolled back 2 add email")

	out, err = runCommand(t, status(f.params))
	require.NoError(t, err)
	require.Contains(t, out, "Current version: 1")
	require.Contains(t, out, "Summary: 1 applied, 1 pending")
}

func TestMigrationCommands_Rerun(t *testing.T) {
	f := newFixture(t)
	f.writeConfig(t)
	f.writeMigration(t, "001_create_users.sql", "-- @version 1\n-- @desc create users\n-- @up\nCREATE TABLE IF NOT EXISTS users(id INT);\n")

	_, err := runCommand(t, up(f.params))
	require.NoError(t, err)

	f.writeMigration(t, "001_create_users.sql", "-- @version 1\n-- @desc create users\n-- @up\nCREATE TABLE IF NOT EXISTS users(id INT);\nCREATE INDEX IF NOT EXISTS users_id ON users(id);\n")

	out, err := runCommand(t, up(f.params))
	require.NoError(t, err)
	require.Contains(t, out, "1 drifted")

	out, err = runCommand(t, rerun(f.params))
	require.NoError(t, err)
	require.Contains(t, out, "create users (001_create_users.sql)")
	require.Contains(t, out, "Summary: 1 applied")
}

func TestOpenSession(t *testing.T) {
	t.Run("flags replace a missing config file", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.MkdirAll(filepath.Join(f.dir, consts.DefaultDir), consts.ModeDir))

		out, err := runCommand(t, up(f.params),
			"--driver", "sqlite",
			"--url", filepath.Join(f.dir, "flags.sqlite3"),
		)
		require.NoError(t, err)
		require.Contains(t, out, "No migrations found.")
	})

	t.Run("driver is required", func(t *testing.T) {
		f := newFixture(t)

		_, err := runCommand(t, up(f.params))
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("unknown driver", func(t *testing.T) {
		f := newFixture(t)

		_, err := runCommand(t, status(f.params), "--driver", "oracle", "--url", "x")
		require.ErrorContains(t, err, "oracle")
	})
}

func TestRoot(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var out bytes.Buffer
	loader := config.NewLoader()
	p := Params{
		Loader:  loader,
		Version: &Version{Version: "1.2.3"},
		Commands: []*cli.Command{
			initCmd(project.New(afero.NewOsFs(), ".")),
		},
	}

	app := newApp(p)
	app.Writer = &out
	app.ErrWriter = io.Discard

	require.NoError(t, app.Run(context.Background(), []string{"scheman", "--dir", dir, "-c", "custom.yaml", "init"}))
	require.Equal(t, "custom.yaml", loader.Path())
	require.FileExists(t, filepath.Join(dir, consts.DefaultConfigFile))

	t.Run("rejects an unknown log level", func(t *testing.T) {
		app := newApp(p)
		app.ErrWriter = io.Discard

		err := app.Run(context.Background(), []string{"scheman", "--log-level", "loud", "init"})
		require.ErrorContains(t, err, "unknown log level")
	})
}
