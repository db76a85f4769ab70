package utils_test

import (
	"testing"

	"github.com/pseudomuto/scheman/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestSQLBuilder(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() *utils.SQLBuilder
		expected string
	}{
		{
			name: "CREATE TABLE IF NOT EXISTS",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder().Create("TABLE").IfNotExists().Name("log").Columns("id INT", "name TEXT")
			},
			expected: `CREATE TABLE IF NOT EXISTS "log" (id INT, name TEXT)`,
		},
		{
			name: "CREATE TABLE with backticks and trailing options",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder(utils.WithQuote('`')).
					Create("TABLE").IfNotExists().Name("db.log").Columns("id Int32").
					Raw("ENGINE = MergeTree() ORDER BY id")
			},
			expected: "CREATE TABLE IF NOT EXISTS `db`.`log` (id Int32) ENGINE = MergeTree() ORDER BY id",
		},
		{
			name: "SELECT with ordering and limit",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder().Select("id").From("log").OrderBy("id DESC").Limit(1)
			},
			expected: `SELECT id FROM "log" ORDER BY id DESC LIMIT 1`,
		},
		{
			name: "SELECT with question placeholder",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder().Select("checksum").From("log").Where("id")
			},
			expected: `SELECT checksum FROM "log" WHERE id = ?`,
		},
		{
			name: "INSERT with dollar placeholders",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder(utils.WithPlaceholders(utils.PlaceholderDollar)).
					InsertInto("log", "id", "name", "checksum")
			},
			expected: `INSERT INTO "log" (id, name, checksum) VALUES ($1, $2, $3)`,
		},
		{
			name: "UPDATE numbers placeholders across clauses",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder(utils.WithPlaceholders(utils.PlaceholderDollar)).
					Update("log").Set("name", "checksum").Where("id")
			},
			expected: `UPDATE "log" SET name = $1, checksum = $2 WHERE id = $3`,
		},
		{
			name: "ALTER TABLE mutation",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder(utils.WithQuote('`')).
					Alter("TABLE").Name("log").Raw("UPDATE").Assign("name").Where("id")
			},
			expected: "ALTER TABLE `log` UPDATE name = ? WHERE id = ?",
		},
		{
			name: "DELETE",
			builder: func() *utils.SQLBuilder {
				return utils.NewSQLBuilder().DeleteFrom("log").Where("id")
			},
			expected: `DELETE FROM "log" WHERE id = ?`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.builder().StringWithoutSemicolon())
		})
	}
}

func TestSQLBuilder_String(t *testing.T) {
	require.Empty(t, utils.NewSQLBuilder().String())
	require.Equal(t, `SELECT 1 FROM "log";`, utils.NewSQLBuilder().Select("1").From("log").String())
}
