package executor

import "time"

// Execution statuses.
const (
	// StatusSuccess indicates the migration was applied or rerun.
	StatusSuccess ExecutionStatus = "success"

	// StatusFailed indicates the migration's script or changelog write failed.
	StatusFailed ExecutionStatus = "failed"

	// StatusSkipped indicates there was nothing to do: the migration is already
	// applied, or a rollback found an empty changelog.
	StatusSkipped ExecutionStatus = "skipped"

	// StatusDrifted indicates an applied migration whose up script changed.
	StatusDrifted ExecutionStatus = "drifted"

	// StatusIgnored indicates a migration below the current version that was
	// never applied. Forward runs never apply it.
	StatusIgnored ExecutionStatus = "ignored"

	// StatusRolledBack indicates the down script ran and the entry was removed.
	StatusRolledBack ExecutionStatus = "rolled_back"

	// StatusRemoved indicates the entry was removed without running a down
	// script, because the migration has none or its file is gone.
	StatusRemoved ExecutionStatus = "removed"
)

type (
	// ExecutionStatus is the outcome of an operation on one migration.
	ExecutionStatus string

	// ExecutionResult contains the result of an operation on one migration.
	ExecutionResult struct {
		// Version of the migration.
		Version int

		// Description of the migration, when known.
		Description string

		// Status is the outcome.
		Status ExecutionStatus

		// Error is set when Status is StatusFailed.
		Error error

		// ExecutionTime is the time spent running the script and writing the
		// changelog.
		ExecutionTime time.Duration

		// Checksum is the up script checksum written to the changelog, or the
		// one computed from disk for skipped and drifted migrations.
		Checksum string
	}
)
