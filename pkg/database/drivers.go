package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/glebarez/go-sqlite" // registers "sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	"github.com/pkg/errors"
)

func init() {
	postgres := Driver{Dialect: Postgres, Open: openPostgres}
	Register("postgres", postgres)
	Register("postgresql", postgres)
	Register("mysql", Driver{Dialect: MySQL, Open: openMySQL})
	Register("sqlite", Driver{Dialect: SQLite, Open: openSQLite("sqlite")})
	Register("sqlite3", Driver{Dialect: SQLite, Open: openSQLite("sqlite3")})
	Register("clickhouse", Driver{Dialect: ClickHouse, Open: openClickHouse})
}

func openPostgres(o Options) (*sql.DB, error) {
	dsn, err := PostgresDSN(o)
	if err != nil {
		return nil, err
	}

	return sql.Open("postgres", dsn)
}

// PostgresDSN converts o into a lib/pq key/value connection string. URLs
// (postgres://...) are converted with pq.ParseURL, and User and Password are
// appended so they take precedence over anything in the URL.
func PostgresDSN(o Options) (string, error) {
	dsn := o.URL
	if strings.Contains(dsn, "://") {
		var err error
		if dsn, err = pq.ParseURL(dsn); err != nil {
			return "", errors.Wrap(err, "invalid postgres url")
		}
	}

	parts := []string{}
	if dsn != "" {
		parts = append(parts, dsn)
	}
	if o.User != "" {
		parts = append(parts, "user="+quotePQ(o.User))
	}
	if o.Password != "" {
		parts = append(parts, "password="+quotePQ(o.Password))
	}

	return strings.Join(parts, " "), nil
}

func quotePQ(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func openMySQL(o Options) (*sql.DB, error) {
	cfg, err := MySQLConfig(o)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "invalid mysql configuration")
	}

	return sql.OpenDB(connector), nil
}

// MySQLConfig parses o.URL as a go-sql-driver DSN (an optional mysql:// prefix
// is dropped) and applies the settings migrations rely on: multi-statement
// scripts and time.Time scanning.
func MySQLConfig(o Options) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(strings.TrimPrefix(o.URL, "mysql://"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid mysql dsn")
	}

	if o.User != "" {
		cfg.User = o.User
	}
	if o.Password != "" {
		cfg.Passwd = o.Password
	}

	cfg.MultiStatements = true
	cfg.ParseTime = true
	return cfg, nil
}

func openSQLite(driverName string) func(Options) (*sql.DB, error) {
	return func(o Options) (*sql.DB, error) {
		dsn := o.URL
		for _, prefix := range []string{"sqlite3://", "sqlite://", "file://"} {
			dsn = strings.TrimPrefix(dsn, prefix)
		}

		if dsn == "" {
			return nil, errors.New("sqlite requires a database path or :memory:")
		}

		return sql.Open(driverName, dsn)
	}
}

func openClickHouse(o Options) (*sql.DB, error) {
	opts, err := ClickHouseOptions(o)
	if err != nil {
		return nil, err
	}

	return clickhouse.OpenDB(opts), nil
}

// ClickHouseOptions parses o.URL with clickhouse.ParseDSN, applies the
// credentials and makes mutations synchronous so changelog updates are visible
// as soon as the statement returns.
func ClickHouseOptions(o Options) (*clickhouse.Options, error) {
	opts, err := clickhouse.ParseDSN(o.URL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid clickhouse dsn")
	}

	if o.User != "" {
		opts.Auth.Username = o.User
	}
	if o.Password != "" {
		opts.Auth.Password = o.Password
	}

	if opts.Settings == nil {
		opts.Settings = clickhouse.Settings{}
	}
	opts.Settings["mutations_sync"] = 2

	return opts, nil
}

func (o Options) String() string {
	return fmt.Sprintf("%s (%s)", o.Driver, redact(o.URL))
}

// redact hides the password portion of URL style connection strings.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}

	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return url
	}

	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return url
	}

	return scheme + "://" + user + ":***@" + host
}
