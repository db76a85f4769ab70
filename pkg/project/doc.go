// Package project manages the files of a scheman project: the scheman.yaml
// configuration and the migration directory.
//
// All file access goes through an afero.Fs, so the same code runs against the
// real file system in the CLI and an in-memory one in tests.
//
// A freshly initialized project looks like this:
//
//	.
//	├── scheman.yaml
//	└── db
//	    └── migrations
//
// GenerateMigration adds numbered templates to the migration directory:
//
//	-- @version 1
//	-- @desc create users
//	-- @up
//
//	-- @down
package project
