// Package executor applies, rolls back and reruns versioned migrations.
//
// An Executor ties a migration directory to a changelog. Each operation
// loads the directory, compares it with the changelog and runs scripts
// through a database.Conn, one statement at a time.
//
// # Lifecycle
//
// A version moves from pending to applied when Run executes its up script
// and records it. An applied version is drifted when its up script no longer
// matches the checksum that was recorded; Rerun executes the new script and
// refreshes the entry. Rollback only ever removes the highest version.
//
// Versions below the current version that were never applied are reported as
// ignored. Forward runs do not go back for them.
//
// # Failures
//
// A failed migration stops Run with an *ApplyError. Migrations applied before
// it are not undone and no transaction wraps the batch. Rollback reports a
// *RollbackError whose Phase says whether the down script or the changelog
// delete failed.
//
// # Usage Example
//
//	store, err := changelog.New(conn, changelog.Options{Dialect: conn.Dialect()})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	exec := executor.New(executor.Config{
//		Conn:       conn,
//		Changelog:  store,
//		Migrations: os.DirFS("db/migrations"),
//	})
//
//	if _, err := exec.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	if drifted, _ := exec.CheckDrift(ctx); len(drifted) > 0 {
//		results, err := exec.Rerun(ctx)
//		...
//	}
package executor
