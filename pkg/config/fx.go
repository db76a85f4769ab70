package config

import (
	"os"
	"sync"

	"github.com/pseudomuto/scheman/pkg/consts"
	"go.uber.org/fx"
)

// Module provides the *Loader shared by the CLI commands.
var Module = fx.Module("config", fx.Provide(NewLoader))

// Loader loads the configuration file once its path is known. The path is
// usually set from the --config flag after the working directory has been
// changed to the project directory.
type Loader struct {
	mu   sync.Mutex
	path string
	cfg  *Config
	err  error
	done bool
}

// NewLoader returns a Loader for scheman.yaml in the working directory.
func NewLoader() *Loader {
	return &Loader{path: consts.DefaultConfigFile}
}

// SetPath changes the configuration file and discards anything already
// loaded.
func (l *Loader) SetPath(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.path = path
	l.cfg, l.err, l.done = nil, nil, false
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.path
}

// Config loads and caches the configuration. It returns nil without an error
// when the file does not exist, so commands that need no configuration (init,
// help, version) still work.
func (l *Loader) Config() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.cfg, l.err
	}

	l.done = true
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return nil, nil
	}

	l.cfg, l.err = LoadConfigFile(l.path)
	return l.cfg, l.err
}
