package changelog

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/consts"
	"github.com/pseudomuto/scheman/pkg/database"
	"github.com/pseudomuto/scheman/pkg/utils"
)

// Changelog column names.
const (
	ColumnVersion     = "version_number"
	ColumnDescription = "migration_description"
	ColumnAppliedAt   = "applied_at"
	ColumnChecksum    = "checksum"
)

// MaxDescriptionLength is the width of the description column. Longer
// descriptions are truncated before they are stored.
const MaxDescriptionLength = 255

// ErrInvalidTable is returned by New when the table name is not a plain
// identifier.
var ErrInvalidTable = errors.New("invalid changelog table name")

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

type (
	// Options configures a Store.
	Options struct {
		// Table is the changelog table name. Defaults to schema_changelog.
		Table string

		// Dialect selects quoting, placeholders and column types. Defaults to
		// database.Standard.
		Dialect database.Dialect
	}

	// Store reads and writes changelog entries.
	Store struct {
		conn    database.Conn
		table   string
		dialect database.Dialect
	}

	// timestamp accepts the different representations drivers use for
	// applied_at.
	timestamp struct {
		time.Time
	}
)

// New creates a Store over conn.
func New(conn database.Conn, opts Options) (*Store, error) {
	table := opts.Table
	if table == "" {
		table = consts.DefaultTable
	}

	if !utils.ValidIdentifier(table) {
		return nil, errors.Wrapf(ErrInvalidTable, "%q", table)
	}

	dialect := opts.Dialect
	if dialect.IsZero() {
		dialect = database.Standard
	}

	return &Store{conn: conn, table: table, dialect: dialect}, nil
}

// Table returns the changelog table name.
func (s *Store) Table() string {
	return s.table
}

// EnsureTable creates the changelog table unless it already exists.
func (s *Store) EnsureTable(ctx context.Context) error {
	cols := s.dialect.Columns
	ddl := s.dialect.Builder().
		Create("TABLE").
		IfNotExists().
		Name(s.table).
		Columns(
			ColumnVersion+" "+cols.Version,
			ColumnDescription+" "+cols.Description,
			ColumnAppliedAt+" "+cols.AppliedAt,
			ColumnChecksum+" "+cols.Checksum,
		).
		Raw(s.dialect.TableOptions).
		StringWithoutSemicolon()

	if err := s.conn.Exec(ctx, ddl); err != nil {
		return s.fail(OpCreateTable, err)
	}

	return nil
}

// CurrentVersion returns the highest applied version, or 0 when nothing has
// been applied.
func (s *Store) CurrentVersion(ctx context.Context) (int, error) {
	query := s.dialect.Builder().
		Select(ColumnVersion).
		From(s.table).
		OrderBy(ColumnVersion + " DESC").
		Limit(1).
		StringWithoutSemicolon()

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return 0, s.fail(OpCurrentVersion, err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, s.fail(OpCurrentVersion, err)
		}
		return 0, nil
	}

	var version int64
	if err := rows.Scan(&version); err != nil {
		return 0, s.fail(OpCurrentVersion, errors.Wrap(err, "failed to scan version"))
	}

	return int(version), nil
}

// ChecksumFor returns the stored checksum for version. The boolean is false
// when the version has no entry.
func (s *Store) ChecksumFor(ctx context.Context, version int) (string, bool, error) {
	query := s.dialect.Builder().
		Select(ColumnChecksum).
		From(s.table).
		Where(ColumnVersion).
		StringWithoutSemicolon()

	rows, err := s.conn.Query(ctx, query, version)
	if err != nil {
		return "", false, s.fail(OpChecksum, err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", false, s.fail(OpChecksum, err)
		}
		return "", false, nil
	}

	var checksum sql.NullString
	if err := rows.Scan(&checksum); err != nil {
		return "", false, s.fail(OpChecksum, errors.Wrap(err, "failed to scan checksum"))
	}

	return strings.TrimSpace(checksum.String), true, nil
}

// Insert records version as applied. applied_at is filled in by the database.
func (s *Store) Insert(ctx context.Context, version int, description, checksum string) error {
	stmt := s.dialect.Builder().
		InsertInto(s.table, ColumnVersion, ColumnDescription, ColumnChecksum).
		StringWithoutSemicolon()

	if _, err := s.conn.Update(ctx, stmt, version, truncate(description), checksum); err != nil {
		return s.fail(OpInsert, err)
	}

	return nil
}

// Update replaces the description and checksum of version and returns the
// number of affected rows.
func (s *Store) Update(ctx context.Context, version int, description, checksum string) (int64, error) {
	b := s.dialect.Builder()
	if s.dialect.Mutations {
		b.Alter("TABLE").Name(s.table).Raw("UPDATE").Assign(ColumnDescription, ColumnChecksum)
	} else {
		b.Update(s.table).Set(ColumnDescription, ColumnChecksum)
	}
	stmt := b.Where(ColumnVersion).StringWithoutSemicolon()

	n, err := s.conn.Update(ctx, stmt, truncate(description), checksum, version)
	if err != nil {
		return 0, s.fail(OpUpdate, err)
	}

	return n, nil
}

// Delete removes the entry for version and returns the number of affected
// rows.
func (s *Store) Delete(ctx context.Context, version int) (int64, error) {
	b := s.dialect.Builder()
	if s.dialect.Mutations {
		b.Alter("TABLE").Name(s.table).Raw("DELETE")
	} else {
		b.DeleteFrom(s.table)
	}
	stmt := b.Where(ColumnVersion).StringWithoutSemicolon()

	n, err := s.conn.Update(ctx, stmt, version)
	if err != nil {
		return 0, s.fail(OpDelete, err)
	}

	return n, nil
}

// SelectAll returns every entry ordered by version.
func (s *Store) SelectAll(ctx context.Context) ([]*Entry, error) {
	query := s.dialect.Builder().
		Select(ColumnVersion, ColumnDescription, ColumnAppliedAt, ColumnChecksum).
		From(s.table).
		OrderBy(ColumnVersion).
		StringWithoutSemicolon()

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, s.fail(OpList, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, s.fail(OpList, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, s.fail(OpList, errors.Wrap(err, "failed to iterate changelog rows"))
	}

	return entries, nil
}

// Load returns every entry as an EntrySet.
func (s *Store) Load(ctx context.Context) (*EntrySet, error) {
	entries, err := s.SelectAll(ctx)
	if err != nil {
		return nil, err
	}

	return NewEntrySet(entries), nil
}

func (s *Store) fail(op string, err error) error {
	return &StoreError{Op: op, Table: s.table, Err: err}
}

func scanEntry(rows database.Rows) (*Entry, error) {
	var (
		version     int64
		description sql.NullString
		appliedAt   timestamp
		checksum    sql.NullString
	)

	if err := rows.Scan(&version, &description, &appliedAt, &checksum); err != nil {
		return nil, errors.Wrap(err, "failed to scan changelog row")
	}

	return &Entry{
		Version:     int(version),
		Description: description.String,
		AppliedAt:   appliedAt.Time,
		Checksum:    strings.TrimSpace(checksum.String),
	}, nil
}

// Scan implements sql.Scanner.
func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time = time.Time{}
	case time.Time:
		ts.Time = v
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case int64:
		ts.Time = time.Unix(v, 0).UTC()
	default:
		return errors.Errorf("unsupported timestamp type %T", src)
	}

	return nil
}

func (ts *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}

	return errors.Errorf("unrecognised timestamp %q", s)
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxDescriptionLength {
		return s
	}

	return string([]rune(s)[:MaxDescriptionLength])
}
