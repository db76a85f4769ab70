package database

import "github.com/pseudomuto/scheman/pkg/utils"

type (
	// Dialect describes the SQL differences between supported databases that
	// matter to the changelog store and to script execution.
	Dialect struct {
		// Name identifies the dialect in logs.
		Name string

		// Quote is the identifier quote character.
		Quote byte

		// Placeholders is the bind parameter style.
		Placeholders utils.PlaceholderStyle

		// SplitStatements is set when the driver executes a single statement
		// per call, so scripts must be split before execution.
		SplitStatements bool

		// Mutations is set when rows are changed with ALTER TABLE ... UPDATE and
		// ALTER TABLE ... DELETE rather than UPDATE and DELETE.
		Mutations bool

		// Columns holds the changelog column types.
		Columns ColumnTypes

		// TableOptions is appended to the changelog CREATE TABLE statement.
		TableOptions string
	}

	// ColumnTypes are the SQL types used for the changelog table columns.
	ColumnTypes struct {
		Version     string
		Description string
		AppliedAt   string
		Checksum    string
	}
)

var standardColumns = ColumnTypes{
	Version:     "INTEGER PRIMARY KEY",
	Description: "VARCHAR(255)",
	AppliedAt:   "TIMESTAMP DEFAULT CURRENT_TIMESTAMP",
	Checksum:    "CHAR(32)",
}

var (
	// Standard uses ANSI quoting and ? parameters. It is the fallback when no
	// dialect is configured.
	Standard = Dialect{
		Name:         "standard",
		Quote:        '"',
		Placeholders: utils.PlaceholderQuestion,
		Columns:      standardColumns,
	}

	// Postgres is the PostgreSQL dialect.
	Postgres = Dialect{
		Name:         "postgres",
		Quote:        '"',
		Placeholders: utils.PlaceholderDollar,
		Columns:      standardColumns,
	}

	// MySQL is the MySQL and MariaDB dialect.
	MySQL = Dialect{
		Name:         "mysql",
		Quote:        '`',
		Placeholders: utils.PlaceholderQuestion,
		Columns: ColumnTypes{
			Version:     "INT PRIMARY KEY",
			Description: "VARCHAR(255)",
			AppliedAt:   "TIMESTAMP DEFAULT CURRENT_TIMESTAMP",
			Checksum:    "CHAR(32)",
		},
	}

	// SQLite is the SQLite dialect.
	SQLite = Dialect{
		Name:         "sqlite",
		Quote:        '"',
		Placeholders: utils.PlaceholderQuestion,
		Columns:      standardColumns,
	}

	// ClickHouse is the ClickHouse dialect. The changelog is a MergeTree table
	// and rows are changed through mutations.
	ClickHouse = Dialect{
		Name:            "clickhouse",
		Quote:           '`',
		Placeholders:    utils.PlaceholderQuestion,
		SplitStatements: true,
		Mutations:       true,
		Columns: ColumnTypes{
			Version:     "Int32",
			Description: "String",
			AppliedAt:   "DateTime DEFAULT now()",
			Checksum:    "FixedString(32)",
		},
		TableOptions: "ENGINE = MergeTree() ORDER BY version_number",
	}
)

// IsZero reports whether the dialect is unset.
func (d Dialect) IsZero() bool {
	return d.Name == ""
}

// Builder returns a SQLBuilder configured for the dialect.
func (d Dialect) Builder() *utils.SQLBuilder {
	return utils.NewSQLBuilder(
		utils.WithQuote(d.Quote),
		utils.WithPlaceholders(d.Placeholders),
	)
}
