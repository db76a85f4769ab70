package migrator

import "fmt"

const placeholderDescription = "<description>"

// Template renders an empty migration file for the given version. The up
// section is left blank so the file is not runnable until it is filled in.
func Template(version int, description string) []byte {
	if description == "" {
		description = placeholderDescription
	}

	return fmt.Appendf(nil, "-- %s %d\n-- %s %s\n-- %s\n\n-- %s\n\n",
		tagVersion, version,
		tagDesc, description,
		tagUp,
		tagDown,
	)
}
