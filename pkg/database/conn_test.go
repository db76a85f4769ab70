package database_test

import (
	"context"
	"testing"

	"github.com/pseudomuto/scheman/pkg/database"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Options{Driver: "sqlite", URL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestDB_ExecQueryUpdate(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	require.Equal(t, database.SQLite, db.Dialect())

	err := db.Exec(ctx, "CREATE TABLE users(id INT, name TEXT);\nINSERT INTO users VALUES (1, 'a;b');\nINSERT INTO users VALUES (2, 'c');\n")
	require.NoError(t, err)

	n, err := db.Update(ctx, "UPDATE users SET name = ? WHERE id > ?", "z", 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	rows, err := db.Query(ctx, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var got []string
	for rows.Next() {
		var (
			id   int
			name string
		)
		require.NoError(t, rows.Scan(&id, &name))
		got = append(got, name)
	}

	require.NoError(t, rows.Err())
	require.Equal(t, []string{"z", "z"}, got)
}

func TestDB_Errors(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	_, err := db.Query(ctx, "SELECT * FROM missing")
	require.ErrorContains(t, err, "failed to execute query")

	_, err = db.Update(ctx, "DELETE FROM missing")
	require.ErrorContains(t, err, "failed to execute statement")

	err = db.Exec(ctx, "CREATE TABLE")
	require.ErrorContains(t, err, "failed to execute script")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), database.Options{Driver: "oracle"})
	require.ErrorIs(t, err, database.ErrUnknownDriver)
}

func TestOpen_SQLiteRequiresPath(t *testing.T) {
	_, err := database.Open(context.Background(), database.Options{Driver: "sqlite"})
	require.ErrorContains(t, err, "sqlite requires a database path")
}
