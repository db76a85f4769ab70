package consts

import (
	"os"
	"time"
)

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)
)

const (
	// DefaultConfigFile is the project configuration file name.
	DefaultConfigFile = "scheman.yaml"

	// DefaultDir is the migrations directory relative to the project root.
	DefaultDir = "db/migrations"

	// DefaultTable is the changelog table name.
	DefaultTable = "schema_changelog"

	// DefaultRetryAttempts is the number of attempts made for each database
	// call when retries are enabled.
	DefaultRetryAttempts = 3

	// DefaultRetryDelay is the wait before the first retry.
	DefaultRetryDelay = time.Second

	// DefaultDebounce is how long watch mode waits for file events to settle
	// before applying migrations.
	DefaultDebounce = 500 * time.Millisecond

	// EnvPrefix prefixes every environment variable read by the CLI.
	EnvPrefix = "SCHEMAN_"
)
