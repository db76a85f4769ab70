// Package changelog persists the history of applied migrations.
//
// The changelog is a single table, schema_changelog by default, with one row
// per applied version:
//
//	version_number         INTEGER PRIMARY KEY
//	migration_description  VARCHAR(255)
//	applied_at             TIMESTAMP DEFAULT CURRENT_TIMESTAMP
//	checksum               CHAR(32)
//
// Store issues parameterized SQL through a database.Conn and never retries on
// its own; retries belong to the connection. Every failure is reported as a
// *StoreError naming the operation that failed.
//
// Example usage:
//
//	store, err := changelog.New(conn, changelog.Options{Dialect: database.Postgres})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := store.EnsureTable(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	current, err := store.CurrentVersion(ctx)
package changelog
