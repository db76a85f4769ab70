// Package migrator loads and parses versioned migration files.
//
// A migration file is plain SQL annotated with comment tags:
//
//	-- @version 3
//	-- @desc add email to users
//	-- @up
//	ALTER TABLE users ADD COLUMN email VARCHAR(255);
//	-- @down
//	ALTER TABLE users DROP COLUMN email;
//
// The version and description tags may appear anywhere in the file. Everything
// between the @up and @down markers forms the up script, everything after @down
// forms the down script. Blank lines are dropped from both scripts.
//
// A migration is runnable only when it has a positive version and a non-empty up
// script. Files that fail either check are reported by LoadMigrationDir as
// skipped rather than returned as errors, so a half-written migration never
// blocks the rest of the directory.
//
// Checksums are MD5 digests rendered as 32 lowercase hex characters. Two are
// exposed per migration: Checksum covers the canonical rendering of the whole
// file and UpChecksum covers the up script alone. UpChecksum is the value
// recorded in the changelog and compared when looking for drift.
//
// Example usage:
//
//	dir, err := migrator.LoadMigrationDir(os.DirFS("db/migrations"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, m := range dir.Migrations {
//		fmt.Printf("%d %s %s\n", m.Version, m.UpChecksum(), m.Description)
//	}
package migrator
