package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/sqlsplit"
)

type (
	// Rows is the subset of *sql.Rows used to read query results.
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Err() error
		Close() error
	}

	// Conn executes SQL against a single target database.
	Conn interface {
		// Query runs a statement that returns rows.
		Query(ctx context.Context, query string, args ...any) (Rows, error)

		// Update runs a statement and returns the number of affected rows.
		Update(ctx context.Context, query string, args ...any) (int64, error)

		// Exec runs an arbitrary script, such as a migration's up or down
		// section, which may contain several statements.
		Exec(ctx context.Context, script string) error

		// Close releases the underlying connection.
		Close() error
	}

	// DB implements Conn over database/sql.
	DB struct {
		db      *sql.DB
		dialect Dialect
	}
)

// New wraps an open *sql.DB. Statements are issued one at a time over a single
// connection.
func New(db *sql.DB, dialect Dialect) *DB {
	db.SetMaxOpenConns(1)
	return &DB{db: db, dialect: dialect}
}

// Open resolves opts.Driver in the registry, opens the database and verifies
// it is reachable.
func Open(ctx context.Context, opts Options) (*DB, error) {
	driver, err := Lookup(opts.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := driver.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", opts.Driver)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s database", opts.Driver)
	}

	return New(sqlDB, driver.Dialect), nil
}

// Dialect returns the dialect of the connected database.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Query implements Conn.
func (d *DB) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute query: %s", query)
	}

	return rows, nil
}

// Update implements Conn.
func (d *DB) Update(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to execute statement: %s", query)
	}

	n, err := res.RowsAffected()
	if err != nil {
		// Not every driver reports affected rows.
		return 0, nil
	}

	return n, nil
}

// Exec implements Conn. Scripts are split into statements first when the
// dialect requires it.
func (d *DB) Exec(ctx context.Context, script string) error {
	if !d.dialect.SplitStatements {
		if _, err := d.db.ExecContext(ctx, script); err != nil {
			return errors.Wrap(err, "failed to execute script")
		}

		return nil
	}

	stmts, err := sqlsplit.Split(script)
	if err != nil {
		return err
	}

	for i, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to execute statement %d of %d", i+1, len(stmts))
		}
	}

	return nil
}

// Close implements Conn.
func (d *DB) Close() error {
	return d.db.Close()
}
