package migrator

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrDuplicateVersion is matched by DuplicateVersionError.
	ErrDuplicateVersion = errors.New("duplicate migration version")

	// ErrInvalidMigration marks a file that parsed but has no usable version or
	// up script.
	ErrInvalidMigration = errors.New("migration has no positive version or no up script")
)

type (
	// ParseError reports a migration file that could not be read.
	ParseError struct {
		Path string
		Err  error
	}

	// DuplicateVersionError reports two files declaring the same version.
	DuplicateVersionError struct {
		Version int
		First   string
		Second  string
	}
)

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse migration %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("%v: version %d is declared by both %s and %s",
		ErrDuplicateVersion, e.Version, e.First, e.Second)
}

func (e *DuplicateVersionError) Unwrap() error { return ErrDuplicateVersion }
