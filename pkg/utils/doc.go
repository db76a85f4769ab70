// Package utils provides SQL helpers shared by the changelog store and the
// database dialects.
//
// # Identifier Utilities (identifier.go)
//
// QuoteIdentifier wraps each dot-separated part of a name in the quote
// character of the target database, leaving parts that are already quoted
// untouched:
//
//	utils.QuoteIdentifier("public.schema_changelog", '"')
//	// Result: "public"."schema_changelog"
//
//	utils.QuoteIdentifier("schema_changelog", '`')
//	// Result: `schema_changelog`
//
// ValidIdentifier rejects names that cannot safely be interpolated into SQL,
// which is how user configured table names are checked before use.
//
// # SQL Builder (sqlbuilder.go)
//
// SQLBuilder assembles statements from fluent clauses and numbers placeholders
// according to the driver's style:
//
//	sql := utils.NewSQLBuilder(utils.WithPlaceholders(utils.PlaceholderDollar)).
//		InsertInto("schema_changelog", "version_number", "checksum").
//		StringWithoutSemicolon()
//	// Result: INSERT INTO "schema_changelog" (version_number, checksum) VALUES ($1, $2)
package utils
