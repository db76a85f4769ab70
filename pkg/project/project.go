package project

import (
	_ "embed"
	"io/fs"
	"os"
	"path/filepath"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/consts"
	"github.com/spf13/afero"
)

var (
	//go:embed embed/scheman.yaml
	defaultConfig []byte

	image = fstest.MapFS{
		"db":                     {Mode: os.ModeDir | consts.ModeDir},
		consts.DefaultDir:        {Mode: os.ModeDir | consts.ModeDir},
		consts.DefaultConfigFile: {Data: defaultConfig},
	}
)

// Project is a scheman project rooted at a directory of fs.
type Project struct {
	fs   afero.Fs
	root string
}

// New creates a new Project rooted at root.
//
// Example:
//
//	p := project.New(afero.NewOsFs(), "/path/to/app")
//	if err := p.Initialize(); err != nil {
//		log.Fatal(err)
//	}
//
//	path, err := p.GenerateMigration("db/migrations", "create users")
func New(fs afero.Fs, root string) *Project {
	return &Project{fs: fs, root: root}
}

// Root returns the project directory.
func (p *Project) Root() string {
	return p.root
}

// Path joins elem onto the project directory. Absolute paths are returned as
// they are.
func (p *Project) Path(elem string) string {
	if filepath.IsAbs(elem) {
		return elem
	}

	return filepath.Join(p.root, elem)
}

// Initialize writes scheman.yaml and creates the migrations directory. It is
// idempotent: existing files and directories are left untouched.
func (p *Project) Initialize() error {
	if err := p.ensureDirectory(); err != nil {
		return err
	}

	for path, entry := range image {
		fullPath := p.Path(path)

		if _, err := p.fs.Stat(fullPath); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to stat %s", fullPath)
		}

		if entry.Mode.IsDir() {
			if err := p.fs.MkdirAll(fullPath, entry.Mode.Perm()); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", fullPath)
			}

			continue
		}

		parentDir := filepath.Dir(fullPath)
		if err := p.fs.MkdirAll(parentDir, consts.ModeDir); err != nil {
			return errors.Wrapf(err, "failed to create parent directory %s", parentDir)
		}

		if err := afero.WriteFile(p.fs, fullPath, entry.Data, consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file %s", fullPath)
		}
	}

	return nil
}

// Migrations returns the migration directory dir as an fs.FS.
func (p *Project) Migrations(dir string) fs.FS {
	return afero.NewIOFS(afero.NewBasePathFs(p.fs, p.Path(dir)))
}

func (p *Project) ensureDirectory() error {
	dir, err := p.fs.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !dir.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}
