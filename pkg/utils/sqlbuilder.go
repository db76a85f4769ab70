package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceholderStyle selects how bind parameters are written.
type PlaceholderStyle int

const (
	// PlaceholderQuestion writes every parameter as ?. Used by MySQL, SQLite
	// and ClickHouse.
	PlaceholderQuestion PlaceholderStyle = iota

	// PlaceholderDollar writes numbered parameters ($1, $2, ...). Used by
	// PostgreSQL.
	PlaceholderDollar
)

type (
	// SQLBuilder provides a fluent interface for building the statements issued
	// against the changelog table. It quotes object names with the configured
	// quote character and numbers bind parameters in the order they are added.
	//
	// Example usage:
	//
	//	sql := NewSQLBuilder().
	//		Select("checksum").
	//		From("schema_changelog").
	//		Where("version_number").
	//		StringWithoutSemicolon()
	//	// Output: SELECT checksum FROM "schema_changelog" WHERE version_number = ?
	SQLBuilder struct {
		parts  []string
		quote  byte
		style  PlaceholderStyle
		params int
	}

	// BuilderOption customises a SQLBuilder.
	BuilderOption func(*SQLBuilder)
)

// WithQuote sets the identifier quote character. Defaults to a double quote.
func WithQuote(q byte) BuilderOption {
	return func(b *SQLBuilder) { b.quote = q }
}

// WithPlaceholders sets the bind parameter style. Defaults to
// PlaceholderQuestion.
func WithPlaceholders(style PlaceholderStyle) BuilderOption {
	return func(b *SQLBuilder) { b.style = style }
}

// NewSQLBuilder creates a new SQLBuilder instance.
func NewSQLBuilder(opts ...BuilderOption) *SQLBuilder {
	b := &SQLBuilder{
		parts: make([]string, 0, 10),
		quote: '"',
		style: PlaceholderQuestion,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Create adds a CREATE clause with the specified object type.
//
// Example:
//
//	builder.Create("TABLE") // CREATE TABLE
func (b *SQLBuilder) Create(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "CREATE", objectType)
	return b
}

// Alter adds an ALTER clause with the specified object type.
func (b *SQLBuilder) Alter(objectType string) *SQLBuilder {
	b.parts = append(b.parts, "ALTER", objectType)
	return b
}

// IfNotExists adds an IF NOT EXISTS clause.
func (b *SQLBuilder) IfNotExists() *SQLBuilder {
	b.parts = append(b.parts, "IF", "NOT", "EXISTS")
	return b
}

// Name adds a quoted object name.
//
// Example:
//
//	builder.Name("schema_changelog")        // "schema_changelog"
//	builder.Name("public.schema_changelog") // "public"."schema_changelog"
func (b *SQLBuilder) Name(name string) *SQLBuilder {
	if name != "" {
		b.parts = append(b.parts, QuoteIdentifier(name, b.quote))
	}
	return b
}

// Columns adds a parenthesised, comma separated list of column definitions.
//
// Example:
//
//	builder.Columns("id INT", "name TEXT") // (id INT, name TEXT)
func (b *SQLBuilder) Columns(defs ...string) *SQLBuilder {
	if len(defs) > 0 {
		b.parts = append(b.parts, "("+strings.Join(defs, ", ")+")")
	}
	return b
}

// Select adds a SELECT clause for the given columns.
func (b *SQLBuilder) Select(columns ...string) *SQLBuilder {
	b.parts = append(b.parts, "SELECT", strings.Join(columns, ", "))
	return b
}

// From adds a FROM clause with a quoted table name.
func (b *SQLBuilder) From(name string) *SQLBuilder {
	b.parts = append(b.parts, "FROM", QuoteIdentifier(name, b.quote))
	return b
}

// Where adds a WHERE clause comparing column to the next bind parameter.
//
// Example:
//
//	builder.Where("version_number") // WHERE version_number = ?
func (b *SQLBuilder) Where(column string) *SQLBuilder {
	b.parts = append(b.parts, "WHERE", column, "=", b.Placeholder())
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(expr string) *SQLBuilder {
	if expr != "" {
		b.parts = append(b.parts, "ORDER", "BY", expr)
	}
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(n int) *SQLBuilder {
	b.parts = append(b.parts, "LIMIT", strconv.Itoa(n))
	return b
}

// InsertInto adds a complete INSERT statement for the given columns with one
// bind parameter per column.
//
// Example:
//
//	builder.InsertInto("t", "a", "b") // INSERT INTO "t" (a, b) VALUES (?, ?)
func (b *SQLBuilder) InsertInto(name string, columns ...string) *SQLBuilder {
	values := make([]string, len(columns))
	for i := range columns {
		values[i] = b.Placeholder()
	}

	b.parts = append(b.parts,
		"INSERT", "INTO", QuoteIdentifier(name, b.quote),
		"("+strings.Join(columns, ", ")+")",
		"VALUES", "("+strings.Join(values, ", ")+")",
	)
	return b
}

// Update adds an UPDATE clause with a quoted table name.
func (b *SQLBuilder) Update(name string) *SQLBuilder {
	b.parts = append(b.parts, "UPDATE", QuoteIdentifier(name, b.quote))
	return b
}

// Assign adds column assignments, one bind parameter per column. It is used
// after Update, and after Raw("UPDATE") for ClickHouse mutations.
//
// Example:
//
//	builder.Alter("TABLE").Name("t").Raw("UPDATE").Assign("a") // ALTER TABLE "t" UPDATE a = ?
func (b *SQLBuilder) Assign(columns ...string) *SQLBuilder {
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = col + " = " + b.Placeholder()
	}

	b.parts = append(b.parts, strings.Join(sets, ", "))
	return b
}

// Set adds a SET keyword followed by column assignments.
func (b *SQLBuilder) Set(columns ...string) *SQLBuilder {
	b.parts = append(b.parts, "SET")
	return b.Assign(columns...)
}

// DeleteFrom adds a DELETE FROM clause with a quoted table name.
func (b *SQLBuilder) DeleteFrom(name string) *SQLBuilder {
	b.parts = append(b.parts, "DELETE", "FROM", QuoteIdentifier(name, b.quote))
	return b
}

// Raw adds raw SQL without any processing.
func (b *SQLBuilder) Raw(sql string) *SQLBuilder {
	if sql != "" {
		b.parts = append(b.parts, sql)
	}
	return b
}

// Placeholder returns the next bind parameter for the configured style.
func (b *SQLBuilder) Placeholder() string {
	b.params++
	if b.style == PlaceholderDollar {
		return fmt.Sprintf("$%d", b.params)
	}

	return "?"
}

// String returns the final SQL string with a semicolon.
func (b *SQLBuilder) String() string {
	if len(b.parts) == 0 {
		return ""
	}
	return strings.Join(b.parts, " ") + ";"
}

// StringWithoutSemicolon returns the SQL string without the trailing semicolon.
// This is the form passed to database/sql.
func (b *SQLBuilder) StringWithoutSemicolon() string {
	return strings.Join(b.parts, " ")
}
