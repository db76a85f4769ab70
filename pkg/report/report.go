// Package report renders executor results for terminals.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/pseudomuto/scheman/pkg/changelog"
	"github.com/pseudomuto/scheman/pkg/executor"
	"github.com/pseudomuto/scheman/pkg/migrator"
)

const timeFormat = "2006-01-02 15:04:05"

var (
	success = color.New(color.FgGreen, color.Bold)
	failure = color.New(color.FgRed, color.Bold)
	warning = color.New(color.FgYellow, color.Bold)
	info    = color.New(color.FgCyan)
)

// Results prints one line per result followed by a summary.
func Results(w io.Writer, results []*executor.ExecutionResult) {
	if len(results) == 0 {
		_, _ = info.Fprintln(w, "ℹ️  No migrations found.")
		return
	}

	var applied, failed, skipped, drifted, ignored int
	for _, result := range results {
		switch result.Status {
		case executor.StatusSuccess:
			_, _ = success.Fprintf(w, "  ✅ %d %s", result.Version, result.Description)
			fmt.Fprintf(w, " (%v)\n", result.ExecutionTime.Round(time.Millisecond))
			applied++
		case executor.StatusFailed:
			_, _ = failure.Fprintf(w, "  ❌ %d %s\n", result.Version, result.Description)
			if result.Error != nil {
				fmt.Fprintf(w, "     Error: %v\n", result.Error)
			}
			failed++
		case executor.StatusDrifted:
			_, _ = warning.Fprintf(w, "  ⚠️  %d %s (drifted, run rerun to reapply)\n", result.Version, result.Description)
			drifted++
		case executor.StatusIgnored:
			_, _ = warning.Fprintf(w, "  ⚠️  %d %s (out of order, ignored)\n", result.Version, result.Description)
			ignored++
		default:
			fmt.Fprintf(w, "  ⏭  %d %s (already applied)\n", result.Version, result.Description)
			skipped++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d applied, %d failed, %d skipped, %d drifted, %d ignored\n",
		applied, failed, skipped, drifted, ignored)

	switch {
	case failed > 0:
		_, _ = failure.Fprintln(w, "❌ Migration failed. Earlier migrations remain applied.")
	case applied > 0:
		_, _ = success.Fprintln(w, "✅ All migrations executed successfully.")
	default:
		_, _ = info.Fprintln(w, "ℹ️  All migrations are up to date.")
	}
}

// Outcome prints results with Results and returns err. Nothing is printed when
// err stopped the operation before any migration was visited.
func Outcome(w io.Writer, results []*executor.ExecutionResult, err error) error {
	if results == nil && err != nil {
		return err
	}

	Results(w, results)
	return err
}

// Rollback prints the outcome of a rollback.
func Rollback(w io.Writer, result *executor.ExecutionResult) {
	switch result.Status {
	case executor.StatusRolledBack:
		_, _ = success.Fprintf(w, "✅ Rolled back %d %s\n", result.Version, result.Description)
	case executor.StatusRemoved:
		_, _ = warning.Fprintf(w, "⚠️  Removed %d from the changelog without running a down script\n", result.Version)
	case executor.StatusFailed:
		_, _ = failure.Fprintf(w, "❌ Rollback of %d failed: %v\n", result.Version, result.Error)
	default:
		_, _ = info.Fprintln(w, "ℹ️  Nothing to roll back.")
	}
}

// Drifted lists migrations whose up script changed after they were applied.
func Drifted(w io.Writer, migrations []*migrator.Migration) {
	if len(migrations) == 0 {
		_, _ = info.Fprintln(w, "ℹ️  No drifted migrations.")
		return
	}

	for _, m := range migrations {
		_, _ = warning.Fprintf(w, "  ⚠️  %d %s (%s)\n", m.Version, m.Description, m.Path)
	}
}

// Entries renders the changelog as a table.
func Entries(w io.Writer, entries []*changelog.Entry) error {
	if len(entries) == 0 {
		_, _ = info.Fprintln(w, "ℹ️  No migrations have been applied.")
		return nil
	}

	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, []string{
			strconv.Itoa(e.Version),
			e.Description,
			formatTime(e.AppliedAt),
			e.Checksum,
		})
	}

	return renderTable([]string{"Version", "Description", "Applied At", "Checksum"}, data, w)
}

// Status renders a status report as a table followed by a summary.
func Status(w io.Writer, status *executor.Status) error {
	fmt.Fprintf(w, "Current version: %d\n\n", status.Current)

	if len(status.Versions) == 0 {
		_, _ = info.Fprintln(w, "ℹ️  No migrations found.")
		return nil
	}

	data := make([][]string, 0, len(status.Versions))
	for _, v := range status.Versions {
		data = append(data, []string{
			strconv.Itoa(v.Version),
			string(v.State),
			v.Description,
			formatTime(v.AppliedAt),
		})
	}

	if err := renderTable([]string{"Version", "State", "Description", "Applied At"}, data, w); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d applied, %d pending, %d drifted, %d ignored, %d missing\n",
		status.Count(executor.StateApplied),
		status.Count(executor.StatePending),
		status.Count(executor.StateDrifted),
		status.Count(executor.StateIgnored),
		status.Count(executor.StateMissing),
	)

	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Local().Format(timeFormat)
}
