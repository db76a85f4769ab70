package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/pseudomuto/scheman/pkg/consts"
	"github.com/pseudomuto/scheman/pkg/migrator"
)

const maxSlugLength = 50

// NextVersion returns one more than the highest version used by any file in
// dir, valid or not. A missing directory yields 1.
func (p *Project) NextVersion(dir string) (int, error) {
	if _, err := p.fs.Stat(p.Path(dir)); os.IsNotExist(err) {
		return 1, nil
	}

	md, err := migrator.LoadMigrationDir(p.Migrations(dir))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to load migrations from %s", dir)
	}

	return md.MaxVersion() + 1, nil
}

// GenerateMigration writes an empty migration with the next free version to
// dir and returns its path. The file is named <version>_<slug>.sql. Its up
// section is blank, so it is skipped until it is filled in.
//
// Example:
//
//	path, err := p.GenerateMigration("db/migrations", "Create users")
//	// path: db/migrations/004_create_users.sql
func (p *Project) GenerateMigration(dir, description string) (string, error) {
	version, err := p.NextVersion(dir)
	if err != nil {
		return "", err
	}

	fullDir := p.Path(dir)
	if err := p.fs.MkdirAll(fullDir, consts.ModeDir); err != nil {
		return "", errors.Wrapf(err, "failed to create directory %s", fullDir)
	}

	path := filepath.Join(fullDir, FileName(version, description))
	f, err := p.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, consts.ModeFile)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create migration %s", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(migrator.Template(version, description)); err != nil {
		return "", errors.Wrapf(err, "failed to write migration %s", path)
	}

	return path, nil
}

// FileName returns the file name for a new migration.
//
// Example:
//
//	FileName(7, "Add email to users") // 007_add_email_to_users.sql
//	FileName(12, "")                  // 012_migration.sql
func FileName(version int, description string) string {
	return fmt.Sprintf("%03d_%s.sql", version, slug(description))
}

func slug(s string) string {
	var b strings.Builder
	underscore := false

	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			underscore = false
			continue
		}

		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}

	out := strings.TrimSuffix(b.String(), "_")
	if len(out) > maxSlugLength {
		out = strings.TrimSuffix(out[:maxSlugLength], "_")
	}

	if out == "" {
		return "migration"
	}

	return out
}
