package changelog

import "fmt"

// Store operations reported in StoreError.Op.
const (
	OpCreateTable    = "create table"
	OpCurrentVersion = "read current version"
	OpChecksum       = "read checksum"
	OpInsert         = "insert entry"
	OpUpdate         = "update entry"
	OpDelete         = "delete entry"
	OpList           = "list entries"
)

// StoreError reports a failed changelog operation.
type StoreError struct {
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("changelog %s: failed to %s: %v", e.Table, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
