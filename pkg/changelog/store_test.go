package changelog_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/changelog"
	"github.com/pseudomuto/scheman/pkg/database"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		store, err := changelog.New(&mockConn{}, changelog.Options{})
		require.NoError(t, err)
		require.Equal(t, "schema_changelog", store.Table())
	})

	t.Run("schema qualified", func(t *testing.T) {
		store, err := changelog.New(&mockConn{}, changelog.Options{Table: "ops.changes"})
		require.NoError(t, err)
		require.Equal(t, "ops.changes", store.Table())
	})

	for _, table := range []string{"log; DROP TABLE users", "1log", `"log"`, "a.b.c"} {
		t.Run(table, func(t *testing.T) {
			store, err := changelog.New(&mockConn{}, changelog.Options{Table: table})
			require.Nil(t, store)
			require.ErrorIs(t, err, changelog.ErrInvalidTable)
		})
	}
}

func TestStore_Statements(t *testing.T) {
	tests := []struct {
		name     string
		dialect  database.Dialect
		run      func(ctx context.Context, s *changelog.Store) error
		expected string
		args     []any
	}{
		{
			name:    "create table standard",
			dialect: database.Standard,
			run:     func(ctx context.Context, s *changelog.Store) error { return s.EnsureTable(ctx) },
			expected: `CREATE TABLE IF NOT EXISTS "schema_changelog" (version_number INTEGER PRIMARY KEY, ` +
				`migration_description VARCHAR(255), applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP, checksum CHAR(32))`,
		},
		{
			name:    "create table clickhouse",
			dialect: database.ClickHouse,
			run:     func(ctx context.Context, s *changelog.Store) error { return s.EnsureTable(ctx) },
			expected: "CREATE TABLE IF NOT EXISTS `schema_changelog` (version_number Int32, migration_description String, " +
				"applied_at DateTime DEFAULT now(), checksum FixedString(32)) ENGINE = MergeTree() ORDER BY version_number",
		},
		{
			name:     "insert postgres",
			dialect:  database.Postgres,
			run:      func(ctx context.Context, s *changelog.Store) error { return s.Insert(ctx, 3, "add users", "abc") },
			expected: `INSERT INTO "schema_changelog" (version_number, migration_description, checksum) VALUES ($1, $2, $3)`,
			args:     []any{3, "add users", "abc"},
		},
		{
			name:    "update mysql",
			dialect: database.MySQL,
			run: func(ctx context.Context, s *changelog.Store) error {
				_, err := s.Update(ctx, 3, "add users", "def")
				return err
			},
			expected: "UPDATE `schema_changelog` SET migration_description = ?, checksum = ? WHERE version_number = ?",
			args:     []any{"add users", "def", 3},
		},
		{
			name:    "update clickhouse",
			dialect: database.ClickHouse,
			run: func(ctx context.Context, s *changelog.Store) error {
				_, err := s.Update(ctx, 3, "add users", "def")
				return err
			},
			expected: "ALTER TABLE `schema_changelog` UPDATE migration_description = ?, checksum = ? WHERE version_number = ?",
			args:     []any{"add users", "def", 3},
		},
		{
			name:    "delete postgres",
			dialect: database.Postgres,
			run: func(ctx context.Context, s *changelog.Store) error {
				_, err := s.Delete(ctx, 3)
				return err
			},
			expected: `DELETE FROM "schema_changelog" WHERE version_number = $1`,
			args:     []any{3},
		},
		{
			name:    "delete clickhouse",
			dialect: database.ClickHouse,
			run: func(ctx context.Context, s *changelog.Store) error {
				_, err := s.Delete(ctx, 3)
				return err
			},
			expected: "ALTER TABLE `schema_changelog` DELETE WHERE version_number = ?",
			args:     []any{3},
		},
		{
			name:    "current version",
			dialect: database.Standard,
			run: func(ctx context.Context, s *changelog.Store) error {
				_, err := s.CurrentVersion(ctx)
				return err
			},
			expected: `SELECT version_number FROM "schema_changelog" ORDER BY version_number DESC LIMIT 1`,
		},
		{
			name:    "checksum",
			dialect: database.Postgres,
			run: func(ctx context.Context, s *changelog.Store) error {
				_, _, err := s.ChecksumFor(ctx, 7)
				return err
			},
			expected: `SELECT checksum FROM "schema_changelog" WHERE version_number = $1`,
			args:     []any{7},
		},
		{
			name:    "select all",
			dialect: database.Standard,
			run: func(ctx context.Context, s *changelog.Store) error {
				_, err := s.SelectAll(ctx)
				return err
			},
			expected: `SELECT version_number, migration_description, applied_at, checksum FROM "schema_changelog" ORDER BY version_number`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &mockConn{}
			store, err := changelog.New(conn, changelog.Options{Dialect: tt.dialect})
			require.NoError(t, err)

			require.NoError(t, tt.run(context.Background(), store))
			require.Len(t, conn.statements, 1)
			require.Equal(t, tt.expected, conn.statements[0].query)
			if tt.args != nil {
				require.Equal(t, tt.args, conn.statements[0].args)
			}
		})
	}
}

func TestStore_Errors(t *testing.T) {
	boom := errors.New("boom")
	ctx := context.Background()

	tests := []struct {
		name string
		conn *mockConn
		op   string
		run  func(s *changelog.Store) error
	}{
		{
			name: "ensure table",
			conn: &mockConn{execErr: boom},
			op:   changelog.OpCreateTable,
			run:  func(s *changelog.Store) error { return s.EnsureTable(ctx) },
		},
		{
			name: "current version",
			conn: &mockConn{queryErr: boom},
			op:   changelog.OpCurrentVersion,
			run: func(s *changelog.Store) error {
				_, err := s.CurrentVersion(ctx)
				return err
			},
		},
		{
			name: "current version iteration",
			conn: &mockConn{rows: &mockRows{rowsErr: boom}},
			op:   changelog.OpCurrentVersion,
			run: func(s *changelog.Store) error {
				_, err := s.CurrentVersion(ctx)
				return err
			},
		},
		{
			name: "checksum",
			conn: &mockConn{queryErr: boom},
			op:   changelog.OpChecksum,
			run: func(s *changelog.Store) error {
				_, _, err := s.ChecksumFor(ctx, 1)
				return err
			},
		},
		{
			name: "insert",
			conn: &mockConn{updateErr: boom},
			op:   changelog.OpInsert,
			run:  func(s *changelog.Store) error { return s.Insert(ctx, 1, "", "") },
		},
		{
			name: "update",
			conn: &mockConn{updateErr: boom},
			op:   changelog.OpUpdate,
			run: func(s *changelog.Store) error {
				_, err := s.Update(ctx, 1, "", "")
				return err
			},
		},
		{
			name: "delete",
			conn: &mockConn{updateErr: boom},
			op:   changelog.OpDelete,
			run: func(s *changelog.Store) error {
				_, err := s.Delete(ctx, 1)
				return err
			},
		},
		{
			name: "select all iteration",
			conn: &mockConn{rows: &mockRows{rowsErr: boom}},
			op:   changelog.OpList,
			run: func(s *changelog.Store) error {
				_, err := s.SelectAll(ctx)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := changelog.New(tt.conn, changelog.Options{})
			require.NoError(t, err)

			err = tt.run(store)
			require.ErrorIs(t, err, boom)

			var storeErr *changelog.StoreError
			require.ErrorAs(t, err, &storeErr)
			require.Equal(t, tt.op, storeErr.Op)
			require.Equal(t, "schema_changelog", storeErr.Table)
		})
	}
}

func TestStore_SelectAll_DecodesRows(t *testing.T) {
	appliedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := &mockRows{data: [][]any{
		{int64(1), "create users", appliedAt, "0123456789abcdef0123456789abcdef"},
		{int64(2), nil, "2024-01-02 03:04:05", []byte("fedcba9876543210fedcba9876543210")},
		{int64(3), []byte("add index"), []byte("2024-01-02T03:04:05Z"), nil},
	}}

	store, err := changelog.New(&mockConn{rows: rows}, changelog.Options{})
	require.NoError(t, err)

	entries, err := store.SelectAll(context.Background())
	require.NoError(t, err)
	require.True(t, rows.closed)
	require.Len(t, entries, 3)

	require.Equal(t, &changelog.Entry{
		Version:     1,
		Description: "create users",
		AppliedAt:   appliedAt,
		Checksum:    "0123456789abcdef0123456789abcdef",
	}, entries[0])

	require.Empty(t, entries[1].Description)
	require.True(t, appliedAt.Equal(entries[1].AppliedAt))
	require.Equal(t, "fedcba9876543210fedcba9876543210", entries[1].Checksum)

	require.Equal(t, "add index", entries[2].Description)
	require.True(t, appliedAt.Equal(entries[2].AppliedAt))
	require.Empty(t, entries[2].Checksum)
}

func TestStore_SelectAll_BadTimestamp(t *testing.T) {
	rows := &mockRows{data: [][]any{{int64(1), "x", "yesterday", "abc"}}}

	store, err := changelog.New(&mockConn{rows: rows}, changelog.Options{})
	require.NoError(t, err)

	_, err = store.SelectAll(context.Background())
	require.ErrorContains(t, err, `unrecognised timestamp "yesterday"`)
}

func TestStore_SQLite(t *testing.T) {
	ctx := context.Background()

	db, err := database.Open(ctx, database.Options{Driver: "sqlite", URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := changelog.New(db, changelog.Options{Dialect: db.Dialect()})
	require.NoError(t, err)

	require.NoError(t, store.EnsureTable(ctx))
	require.NoError(t, store.EnsureTable(ctx))

	current, err := store.CurrentVersion(ctx)
	require.NoError(t, err)
	require.Zero(t, current)

	require.NoError(t, store.Insert(ctx, 3, "third", "c3"))
	require.NoError(t, store.Insert(ctx, 1, "first", "c1"))
	require.NoError(t, store.Insert(ctx, 2, strings.Repeat("x", 300), "c2"))

	current, err = store.CurrentVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, current)

	sum, ok, err := store.ChecksumFor(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "c1", sum)

	_, ok, err = store.ChecksumFor(ctx, 42)
	require.NoError(t, err)
	require.False(t, ok)

	n, err := store.Update(ctx, 1, "first again", "c1b")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = store.Delete(ctx, 3)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = store.Delete(ctx, 3)
	require.NoError(t, err)
	require.Zero(t, n)

	set, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, set.Versions())
	require.Equal(t, 2, set.Current())

	first := set.Get(1)
	require.Equal(t, "first again", first.Description)
	require.Equal(t, "c1b", first.Checksum)
	require.False(t, first.AppliedAt.IsZero())
	require.Len(t, set.Get(2).Description, changelog.MaxDescriptionLength)
}
