package executor

import (
	"context"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/changelog"
	"github.com/pseudomuto/scheman/pkg/database"
	"github.com/pseudomuto/scheman/pkg/migrator"
)

type (
	// Executor applies, rolls back and reruns migrations from a directory
	// against a single database.
	//
	// Operations run one statement at a time on the calling goroutine. An
	// Executor must not be shared between goroutines.
	//
	// Example usage:
	//
	//	exec := executor.New(executor.Config{
	//		Conn:       conn,
	//		Changelog:  store,
	//		Migrations: os.DirFS("db/migrations"),
	//	})
	//
	//	results, err := exec.Run(ctx)
	//	if err != nil {
	//		log.Fatal(err)
	//	}
	//
	//	for _, result := range results {
	//		fmt.Printf("Migration %d: %s\n", result.Version, result.Status)
	//	}
	Executor struct {
		conn           database.Conn
		changelog      *changelog.Store
		dir            fs.FS
		logger         *slog.Logger
		strictRollback bool

		bootstrapped bool
		drifted      []*migrator.Migration
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// Conn runs migration scripts.
		Conn database.Conn

		// Changelog records applied versions. It normally shares Conn.
		Changelog *changelog.Store

		// Migrations is the migration directory.
		Migrations fs.FS

		// Logger receives progress and warnings. Defaults to slog.Default().
		Logger *slog.Logger

		// StrictRollback makes Rollback fail instead of removing the entry when
		// the current migration has no down script.
		StrictRollback bool
	}
)

// New creates a new Executor.
func New(config Config) *Executor {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{
		conn:           config.Conn,
		changelog:      config.Changelog,
		dir:            config.Migrations,
		logger:         logger,
		strictRollback: config.StrictRollback,
	}
}

// LoadMigrations parses the migration directory and returns the valid
// migrations in ascending version order. Files that cannot be parsed or are
// not valid migrations are logged and left out. Two valid migrations with the
// same version fail with a *migrator.DuplicateVersionError.
func (e *Executor) LoadMigrations() ([]*migrator.Migration, error) {
	md, err := migrator.LoadMigrationDir(e.dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load migrations")
	}

	for _, s := range md.Skipped {
		e.logger.Debug("Skipping file", "path", s.Path, "reason", s.Err)
	}

	return md.Migrations, nil
}

// CheckDrift compares every migration with its changelog entry and returns
// the migrations whose up script changed after they were applied. The result
// replaces the set used by Rerun.
func (e *Executor) CheckDrift(ctx context.Context) ([]*migrator.Migration, error) {
	if err := e.ensureBootstrap(ctx); err != nil {
		return nil, err
	}

	migrations, err := e.LoadMigrations()
	if err != nil {
		return nil, err
	}

	if _, err := e.checkDrift(ctx, migrations); err != nil {
		return nil, err
	}

	return e.Drifted(), nil
}

// Drifted returns the migrations found by the last drift check that have not
// been rerun.
func (e *Executor) Drifted() []*migrator.Migration {
	out := make([]*migrator.Migration, len(e.drifted))
	copy(out, e.drifted)
	return out
}

// Run checks for drift and then applies every migration above the current
// version in ascending order. A result is returned for every loaded
// migration visited. The first failure stops the run; migrations applied
// before it stay applied and the error is an *ApplyError.
func (e *Executor) Run(ctx context.Context) ([]*ExecutionResult, error) {
	if err := e.ensureBootstrap(ctx); err != nil {
		return nil, err
	}

	migrations, err := e.LoadMigrations()
	if err != nil {
		return nil, err
	}

	applied, err := e.checkDrift(ctx, migrations)
	if err != nil {
		return nil, err
	}

	current, err := e.changelog.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*ExecutionResult, 0, len(migrations))
	for _, m := range migrations {
		if m.Version > current {
			result := e.apply(ctx, m)
			results = append(results, result)

			if result.Status == StatusFailed {
				return results, result.Error
			}
			continue
		}

		result := &ExecutionResult{
			Version:     m.Version,
			Description: m.Description,
			Status:      StatusSkipped,
			Checksum:    m.UpChecksum(),
		}

		switch {
		case !applied[m.Version]:
			e.logger.Warn("Ignoring out of order migration",
				"version", m.Version,
				"current", current,
				"path", m.Path,
			)
			result.Status = StatusIgnored
		case e.isDrifted(m.Version):
			result.Status = StatusDrifted
		}

		results = append(results, result)
	}

	return results, nil
}

// Rollback reverts the migration with the current version. An empty
// changelog yields a StatusSkipped result and no changes.
//
// When the migration has no down script, or no file defines the version, the
// entry is still removed and the result is StatusRemoved. With StrictRollback
// set this is a *RollbackError wrapping ErrNoDownScript or
// ErrMigrationNotFound and nothing changes.
func (e *Executor) Rollback(ctx context.Context) (*ExecutionResult, error) {
	if err := e.ensureBootstrap(ctx); err != nil {
		return nil, err
	}

	current, err := e.changelog.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	if current == 0 {
		e.logger.Info("Nothing to roll back")
		return &ExecutionResult{Status: StatusSkipped}, nil
	}

	migrations, err := e.LoadMigrations()
	if err != nil {
		return nil, err
	}

	var target *migrator.Migration
	for _, m := range migrations {
		if m.Version == current {
			target = m
			break
		}
	}

	start := time.Now()
	result := &ExecutionResult{Version: current}

	switch {
	case target == nil || !target.HasDown():
		reason := ErrNoDownScript
		if target == nil {
			reason = ErrMigrationNotFound
		} else {
			result.Description = target.Description
			result.Checksum = target.UpChecksum()
		}

		if e.strictRollback {
			return nil, &RollbackError{Version: current, Phase: PhaseScript, Err: reason}
		}

		e.logger.Warn("Removing changelog entry without running a down script",
			"version", current,
			"reason", reason,
		)
		result.Status = StatusRemoved
	default:
		result.Description = target.Description
		result.Checksum = target.UpChecksum()

		e.logger.Info("Rolling back migration", "version", current, "description", target.Description)
		if err := e.conn.Exec(ctx, target.Down); err != nil {
			return e.rollbackFailed(result, start, PhaseScript, err)
		}
		result.Status = StatusRolledBack
	}

	if _, err := e.changelog.Delete(ctx, current); err != nil {
		return e.rollbackFailed(result, start, PhaseChangelog, err)
	}

	e.forget(current)
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// Rerun reapplies every drifted migration found by the last drift check and
// refreshes its changelog entry. Successful migrations leave the drifted set;
// the first failure stops the rerun with an *ApplyError. Rerun does nothing
// when no migration has drifted.
func (e *Executor) Rerun(ctx context.Context) ([]*ExecutionResult, error) {
	if len(e.drifted) == 0 {
		return nil, nil
	}

	if err := e.ensureBootstrap(ctx); err != nil {
		return nil, err
	}

	results := make([]*ExecutionResult, 0, len(e.drifted))
	for len(e.drifted) > 0 {
		m := e.drifted[0]

		result := e.reapply(ctx, m)
		results = append(results, result)

		if result.Status == StatusFailed {
			return results, result.Error
		}

		e.drifted = e.drifted[1:]
	}

	e.drifted = nil
	return results, nil
}

// ListApplied returns every changelog entry ordered by version.
func (e *Executor) ListApplied(ctx context.Context) ([]*changelog.Entry, error) {
	if err := e.ensureBootstrap(ctx); err != nil {
		return nil, err
	}

	return e.changelog.SelectAll(ctx)
}

// CurrentVersion returns the highest applied version, or 0.
func (e *Executor) CurrentVersion(ctx context.Context) (int, error) {
	if err := e.ensureBootstrap(ctx); err != nil {
		return 0, err
	}

	return e.changelog.CurrentVersion(ctx)
}

func (e *Executor) ensureBootstrap(ctx context.Context) error {
	if e.bootstrapped {
		return nil
	}

	if err := e.changelog.EnsureTable(ctx); err != nil {
		return errors.Wrap(err, "failed to bootstrap changelog")
	}

	e.bootstrapped = true
	return nil
}

// checkDrift replaces the drifted set and returns the versions that have a
// changelog entry.
func (e *Executor) checkDrift(ctx context.Context, migrations []*migrator.Migration) (map[int]bool, error) {
	applied := make(map[int]bool, len(migrations))
	var drifted []*migrator.Migration

	for _, m := range migrations {
		stored, ok, err := e.changelog.ChecksumFor(ctx, m.Version)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		applied[m.Version] = true
		if stored != m.UpChecksum() {
			e.logger.Warn("Migration has drifted",
				"version", m.Version,
				"path", m.Path,
				"stored", stored,
				"current", m.UpChecksum(),
			)
			drifted = append(drifted, m)
		}
	}

	e.drifted = drifted
	return applied, nil
}

func (e *Executor) isDrifted(version int) bool {
	for _, m := range e.drifted {
		if m.Version == version {
			return true
		}
	}

	return false
}

func (e *Executor) apply(ctx context.Context, m *migrator.Migration) *ExecutionResult {
	start := time.Now()
	checksum := m.UpChecksum()

	e.logger.Info("Applying migration", "version", m.Version, "description", m.Description)

	err := e.conn.Exec(ctx, m.Up)
	if err == nil {
		err = e.changelog.Insert(ctx, m.Version, m.Description, checksum)
	}

	return e.result(m, start, checksum, err)
}

func (e *Executor) reapply(ctx context.Context, m *migrator.Migration) *ExecutionResult {
	start := time.Now()
	checksum := m.UpChecksum()

	_, applied, err := e.changelog.ChecksumFor(ctx, m.Version)
	if err == nil && !applied {
		err = ErrNotApplied
	}
	if err != nil {
		return e.result(m, start, checksum, err)
	}

	e.logger.Info("Rerunning migration", "version", m.Version, "description", m.Description)

	if err := e.conn.Exec(ctx, m.Up); err != nil {
		return e.result(m, start, checksum, err)
	}

	return e.result(m, start, checksum, e.refresh(ctx, m, checksum))
}

// refresh rewrites the changelog entry of m. Mutation dialects do not report
// affected rows, so a zero count is confirmed by reading the entry back.
func (e *Executor) refresh(ctx context.Context, m *migrator.Migration, checksum string) error {
	n, err := e.changelog.Update(ctx, m.Version, m.Description, checksum)
	if err != nil || n > 0 {
		return err
	}

	stored, ok, err := e.changelog.ChecksumFor(ctx, m.Version)
	switch {
	case err != nil:
		return err
	case !ok:
		return ErrNotApplied
	case stored != checksum:
		return errors.Errorf("changelog entry for version %d was not updated", m.Version)
	}

	return nil
}

// forget drops version from the drifted set.
func (e *Executor) forget(version int) {
	e.drifted = slices.DeleteFunc(e.drifted, func(m *migrator.Migration) bool {
		return m.Version == version
	})
}

func (e *Executor) result(m *migrator.Migration, start time.Time, checksum string, err error) *ExecutionResult {
	result := &ExecutionResult{
		Version:       m.Version,
		Description:   m.Description,
		Status:        StatusSuccess,
		ExecutionTime: time.Since(start),
		Checksum:      checksum,
	}

	if err != nil {
		result.Status = StatusFailed
		result.Error = &ApplyError{Version: m.Version, Path: m.Path, Err: err}
		e.logger.Error("Migration failed", "version", m.Version, "err", err)
	}

	return result
}

func (e *Executor) rollbackFailed(result *ExecutionResult, start time.Time, phase string, err error) (*ExecutionResult, error) {
	result.Status = StatusFailed
	result.ExecutionTime = time.Since(start)
	result.Error = &RollbackError{Version: result.Version, Phase: phase, Err: err}

	e.logger.Error("Rollback failed", "version", result.Version, "phase", phase, "err", err)
	return result, result.Error
}
