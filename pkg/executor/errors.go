package executor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Rollback phases reported in RollbackError.Phase.
const (
	PhaseScript    = "script"
	PhaseChangelog = "changelog"
)

var (
	// ErrNoDownScript is returned by a strict rollback when the current
	// migration has no down script.
	ErrNoDownScript = errors.New("migration has no down script")

	// ErrMigrationNotFound is returned by a strict rollback when no file
	// defines the current version.
	ErrMigrationNotFound = errors.New("no migration file for version")

	// ErrNotApplied is returned by Rerun when a drifted migration no longer
	// has a changelog entry, for example after it was rolled back.
	ErrNotApplied = errors.New("migration is not applied")
)

type (
	// ApplyError reports a migration whose up script or changelog entry
	// could not be written. Migrations applied before it stay applied.
	ApplyError struct {
		Version int
		Path    string
		Err     error
	}

	// RollbackError reports a failed rollback. Phase tells whether the down
	// script or the changelog delete failed; a changelog failure leaves the
	// schema rolled back while the entry remains.
	RollbackError struct {
		Version int
		Phase   string
		Err     error
	}
)

func (e *ApplyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to apply migration %d: %v", e.Version, e.Err)
	}
	return fmt.Sprintf("failed to apply migration %d (%s): %v", e.Version, e.Path, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

func (e *RollbackError) Error() string {
	return fmt.Sprintf("failed to roll back migration %d (%s): %v", e.Version, e.Phase, e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }
