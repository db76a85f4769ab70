package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/consts"
	"github.com/pseudomuto/scheman/pkg/database"
	"github.com/pseudomuto/scheman/pkg/utils"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Database holds the connection settings for the target database.
	Database struct {
		// Driver is a registered driver name such as postgres, mysql, sqlite or
		// clickhouse.
		Driver string `yaml:"driver,omitempty"`

		// URL is the connection URL or DSN understood by the driver.
		URL string `yaml:"url,omitempty"`

		// User and Password override any credentials in URL.
		User     string `yaml:"user,omitempty"`
		Password string `yaml:"password,omitempty"`
	}

	// Retry configures retries of failed database calls.
	Retry struct {
		Enabled  bool                 `yaml:"enabled"`
		Attempts int                  `yaml:"attempts,omitempty"`
		Delay    time.Duration        `yaml:"delay,omitempty"`
		Backoff  database.BackoffKind `yaml:"backoff,omitempty"`
	}

	// Rollback configures the down command.
	Rollback struct {
		// Strict makes rolling back a migration without a down script an error
		// instead of only removing its changelog entry.
		Strict bool `yaml:"strict"`
	}

	// Log configures the process logger.
	Log struct {
		Level  string `yaml:"level,omitempty"`
		Format string `yaml:"format,omitempty"`
	}

	// Config represents the scheman project configuration.
	Config struct {
		Database Database `yaml:"database"`

		// Dir specifies the directory where migration files are stored.
		Dir string `yaml:"dir"`

		// Table is the changelog table name.
		Table string `yaml:"table"`

		Retry    Retry    `yaml:"retry"`
		Rollback Rollback `yaml:"rollback"`
		Log      Log      `yaml:"log"`
	}
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig parses a scheman configuration from the provided io.Reader.
//
// ${VAR} references in the database section are expanded from the
// environment. Missing values are filled with defaults and the result is
// validated, except for the driver which may still come from flags.
//
// Example:
//
//	yamlData := `
//	database:
//	  driver: postgres
//	  url: postgres://localhost:5432/app
//	  password: ${DB_PASSWORD}
//	dir: db/migrations
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Printf("Migrations: %s\n", cfg.Dir)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scheman config")
	}

	cfg.Database.URL = os.ExpandEnv(cfg.Database.URL)
	cfg.Database.User = os.ExpandEnv(cfg.Database.User)
	cfg.Database.Password = os.ExpandEnv(cfg.Database.Password)

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigFile loads a configuration from the specified file path. A .env
// file next to it is loaded into the environment first; variables that are
// already set win.
//
// Example:
//
//	cfg, err := config.LoadConfigFile("scheman.yaml")
//	if err != nil {
//		log.Fatal("Failed to load config:", err)
//	}
func LoadConfigFile(path string) (*Config, error) {
	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.Wrapf(err, "failed to load env file: %s", envFile)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Validate checks the complete configuration, including the settings that
// flags may have supplied after loading.
func (c *Config) Validate() error {
	if c.Database.Driver == "" {
		return errors.Wrap(ErrInvalidConfig, "database.driver is required")
	}

	if c.Database.URL == "" {
		return errors.Wrap(ErrInvalidConfig, "database.url is required")
	}

	return c.validate()
}

// ConnOptions returns the database connection options.
func (c *Config) ConnOptions() database.Options {
	return database.Options{
		Driver:   c.Database.Driver,
		URL:      c.Database.URL,
		User:     c.Database.User,
		Password: c.Database.Password,
	}
}

// RetryPolicy returns the retry policy for database calls. Retries are
// disabled unless retry.enabled is set.
func (c *Config) RetryPolicy() database.RetryPolicy {
	if !c.Retry.Enabled {
		return database.RetryPolicy{MaxAttempts: 1}
	}

	return database.RetryPolicy{
		MaxAttempts: c.Retry.Attempts,
		Delay:       c.Retry.Delay,
		Backoff:     c.Retry.Backoff,
	}
}

func (c *Config) applyDefaults() {
	if c.Dir == "" {
		c.Dir = consts.DefaultDir
	}
	if c.Table == "" {
		c.Table = consts.DefaultTable
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = consts.DefaultRetryAttempts
	}
	if c.Retry.Delay == 0 {
		c.Retry.Delay = consts.DefaultRetryDelay
	}
	if c.Retry.Backoff == "" {
		c.Retry.Backoff = database.BackoffConstant
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if !utils.ValidIdentifier(c.Table) {
		return errors.Wrapf(ErrInvalidConfig, "table %q is not a valid identifier", c.Table)
	}

	if !c.Retry.Backoff.Valid() {
		return errors.Wrapf(ErrInvalidConfig, "unknown retry.backoff %q", c.Retry.Backoff)
	}

	if c.Retry.Attempts < 1 {
		return errors.Wrapf(ErrInvalidConfig, "retry.attempts must be positive, got %d", c.Retry.Attempts)
	}

	if c.Retry.Delay < 0 {
		return errors.Wrapf(ErrInvalidConfig, "retry.delay must not be negative, got %s", c.Retry.Delay)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown log.format %q", c.Log.Format)
	}

	return nil
}
