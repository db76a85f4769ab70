// Package database is the narrow SQL executor the migration engine runs on.
//
// Conn is the only dependency of the changelog store and the executor: run a
// query, run a statement and report the rows it touched, run an arbitrary
// script, close. DB implements Conn on top of database/sql, and WithRetry
// decorates any Conn with a bounded retry policy.
//
// Drivers are resolved by name through a registry populated at init time:
//
//	postgres, postgresql  github.com/lib/pq
//	mysql                 github.com/go-sql-driver/mysql
//	sqlite                github.com/glebarez/go-sqlite (pure Go)
//	sqlite3               github.com/mattn/go-sqlite3 (cgo)
//	clickhouse            github.com/ClickHouse/clickhouse-go/v2
//
// Each driver carries a Dialect describing identifier quoting, bind parameter
// style and the changelog table layout for that database.
//
// Example usage:
//
//	db, err := database.Open(ctx, database.Options{
//		Driver:   "postgres",
//		URL:      "postgres://localhost:5432/app?sslmode=disable",
//		User:     "app",
//		Password: os.Getenv("DB_PASSWORD"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	conn := database.WithRetry(db, database.RetryPolicy{
//		MaxAttempts: 3,
//		Delay:       time.Second,
//		Backoff:     database.BackoffExponential,
//	})
package database
