package changelog

import (
	"slices"
	"time"

	"github.com/pseudomuto/scheman/pkg/migrator"
)

type (
	// Entry is one row of the changelog table.
	Entry struct {
		// Version of the applied migration.
		Version int

		// Description copied from the migration's @desc tag when it was
		// applied or last rerun.
		Description string

		// AppliedAt is set by the database when the row is inserted.
		AppliedAt time.Time

		// Checksum is the MD5 of the up script that was executed.
		Checksum string
	}

	// EntrySet indexes changelog entries by version.
	EntrySet struct {
		entries  map[int]*Entry
		versions []int
	}
)

// NewEntrySet creates an EntrySet. Later entries win when versions repeat.
func NewEntrySet(entries []*Entry) *EntrySet {
	set := &EntrySet{
		entries:  make(map[int]*Entry, len(entries)),
		versions: make([]int, 0, len(entries)),
	}

	for _, e := range entries {
		if _, ok := set.entries[e.Version]; !ok {
			set.versions = append(set.versions, e.Version)
		}
		set.entries[e.Version] = e
	}

	slices.Sort(set.versions)
	return set
}

// Len returns the number of distinct versions.
func (s *EntrySet) Len() int {
	return len(s.versions)
}

// Get returns the entry for version, or nil.
func (s *EntrySet) Get(version int) *Entry {
	return s.entries[version]
}

// IsApplied reports whether version has an entry.
func (s *EntrySet) IsApplied(version int) bool {
	_, ok := s.entries[version]
	return ok
}

// Versions returns the recorded versions in ascending order.
func (s *EntrySet) Versions() []int {
	return slices.Clone(s.versions)
}

// Entries returns the entries in ascending version order.
func (s *EntrySet) Entries() []*Entry {
	out := make([]*Entry, len(s.versions))
	for i, v := range s.versions {
		out[i] = s.entries[v]
	}

	return out
}

// Current returns the highest recorded version, or 0 when the set is empty.
func (s *EntrySet) Current() int {
	if len(s.versions) == 0 {
		return 0
	}

	return s.versions[len(s.versions)-1]
}

// IsDrifted reports whether m was applied with an up script that differs from
// the one on disk.
func (s *EntrySet) IsDrifted(m *migrator.Migration) bool {
	e, ok := s.entries[m.Version]
	return ok && e.Checksum != m.UpChecksum()
}

// Pending returns the migrations with a version above Current, in the order
// given.
func (s *EntrySet) Pending(migrations []*migrator.Migration) []*migrator.Migration {
	current := s.Current()

	var pending []*migrator.Migration
	for _, m := range migrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}

	return pending
}

// OutOfOrder returns the migrations below Current that have no entry. They
// will never be applied by a forward run.
func (s *EntrySet) OutOfOrder(migrations []*migrator.Migration) []*migrator.Migration {
	current := s.Current()

	var out []*migrator.Migration
	for _, m := range migrations {
		if m.Version < current && !s.IsApplied(m.Version) {
			out = append(out, m)
		}
	}

	return out
}
