package executor

import (
	"context"
	"slices"
	"time"

	"github.com/pseudomuto/scheman/pkg/changelog"
)

// Version states reported by Status.
const (
	StateApplied VersionState = "applied"
	StatePending VersionState = "pending"
	StateDrifted VersionState = "drifted"
	StateIgnored VersionState = "ignored"
	StateMissing VersionState = "missing"
)

type (
	// VersionState describes where a version stands relative to the
	// changelog.
	VersionState string

	// VersionStatus is one line of a Status report.
	VersionStatus struct {
		Version     int
		Description string
		State       VersionState
		Path        string
		AppliedAt   time.Time
	}

	// Status compares the migration directory with the changelog.
	Status struct {
		Current  int
		Versions []*VersionStatus
	}
)

// Count returns the number of versions in state.
func (s *Status) Count(state VersionState) int {
	n := 0
	for _, v := range s.Versions {
		if v.State == state {
			n++
		}
	}

	return n
}

// Status reports every known version: applied, pending, drifted, ignored
// (below the current version and never applied) and missing (applied but no
// longer on disk). It reads the changelog once and changes nothing.
func (e *Executor) Status(ctx context.Context) (*Status, error) {
	if err := e.ensureBootstrap(ctx); err != nil {
		return nil, err
	}

	migrations, err := e.LoadMigrations()
	if err != nil {
		return nil, err
	}

	entries, err := e.changelog.Load(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{Current: entries.Current()}
	seen := make(map[int]bool, len(migrations))

	for _, m := range migrations {
		seen[m.Version] = true

		vs := &VersionStatus{
			Version:     m.Version,
			Description: m.Description,
			Path:        m.Path,
		}

		entry := entries.Get(m.Version)
		switch {
		case entry != nil && entries.IsDrifted(m):
			vs.State = StateDrifted
			vs.AppliedAt = entry.AppliedAt
		case entry != nil:
			vs.State = StateApplied
			vs.AppliedAt = entry.AppliedAt
		case m.Version > status.Current:
			vs.State = StatePending
		default:
			vs.State = StateIgnored
		}

		status.Versions = append(status.Versions, vs)
	}

	for _, entry := range entries.Entries() {
		if seen[entry.Version] {
			continue
		}

		status.Versions = append(status.Versions, missing(entry))
	}

	slices.SortFunc(status.Versions, func(a, b *VersionStatus) int {
		return a.Version - b.Version
	})

	return status, nil
}

func missing(entry *changelog.Entry) *VersionStatus {
	return &VersionStatus{
		Version:     entry.Version,
		Description: entry.Description,
		State:       StateMissing,
		AppliedAt:   entry.AppliedAt,
	}
}
