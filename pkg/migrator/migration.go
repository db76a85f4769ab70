package migrator

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// UnsetVersion is assigned when a file has no parseable version tag.
const UnsetVersion = -1

const (
	tagVersion = "@version"
	tagDesc    = "@desc"
	tagUp      = "@up"
	tagDown    = "@down"

	maxLineSize = 1024 * 1024
)

type section int

const (
	sectionHeader section = iota
	sectionUp
	sectionDown
)

type (
	// Migration is a single versioned schema change parsed from a file.
	//
	// Migrations are never mutated after parsing. Up holds the forward script and
	// Down the optional reverse script, each line terminated by a newline.
	Migration struct {
		// Version orders migrations and links them to changelog entries.
		Version int

		// Description is the free-text label from the @desc tag.
		Description string

		// Up is the forward SQL script.
		Up string

		// Down is the reverse SQL script, empty when the file has none.
		Down string

		// Path is the file the migration was parsed from.
		Path string
	}

	// MigrationDir is the result of loading a migration directory.
	MigrationDir struct {
		// Migrations holds every runnable migration sorted by ascending version.
		Migrations []*Migration

		// Skipped lists files that were not runnable, in directory order.
		Skipped []*Skipped
	}

	// Skipped describes a file excluded from the runnable set. Migration is nil
	// when the file could not be read at all.
	Skipped struct {
		Path      string
		Migration *Migration
		Err       error
	}
)

// Parse reads a tagged migration script from r. The path is recorded on the
// result for diagnostics only.
//
// Parse never fails because of content: a missing or malformed version tag
// produces a Migration with Version set to UnsetVersion, and a missing up
// section produces an empty Up. Both make Valid report false. Errors are only
// returned when r cannot be read.
//
// Example usage:
//
//	src := `-- @version 1
//	-- @desc create table users
//	-- @up
//	CREATE TABLE users(id INT)
//	-- @down
//	DROP TABLE users`
//
//	m, err := migrator.Parse("001_users.sql", strings.NewReader(src))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Println(m.Version, m.Valid()) // 1 true
//	fmt.Printf("%q\n", m.Up)          // "CREATE TABLE users(id INT)\n"
func Parse(path string, r io.Reader) (*Migration, error) {
	var (
		m    = &Migration{Version: UnsetVersion, Path: path}
		up   strings.Builder
		down strings.Builder
		sec  = sectionHeader
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if tag, value, ok := parseTag(trimmed); ok {
			switch {
			case tag == tagVersion:
				m.Version = parseVersion(value)
				continue
			case tag == tagDesc:
				m.Description = value
				continue
			case tag == tagUp && value == "":
				sec = sectionUp
				continue
			case tag == tagDown && value == "":
				sec = sectionDown
				continue
			}
		}

		switch sec {
		case sectionUp:
			up.WriteString(line)
			up.WriteByte('\n')
		case sectionDown:
			down.WriteString(line)
			down.WriteByte('\n')
		case sectionHeader:
			// Untagged lines before @up are not part of either script.
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	m.Up = up.String()
	m.Down = down.String()
	return m, nil
}

// ParseFile opens path within fsys and parses it. A file that cannot be opened
// or read yields a *ParseError and no Migration.
func ParseFile(fsys fs.FS, path string) (*Migration, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: errors.Wrap(err, "failed to open")}
	}
	defer func() { _ = f.Close() }()

	return Parse(path, f)
}

// Valid reports whether the migration can be applied: a positive version and a
// non-empty up script.
func (m *Migration) Valid() bool {
	return m.Version > 0 && strings.TrimSpace(m.Up) != ""
}

// HasDown reports whether the migration has a reverse script.
func (m *Migration) HasDown() bool {
	return strings.TrimSpace(m.Down) != ""
}

// Script renders the migration in its canonical form. This is the input to
// Checksum.
func (m *Migration) Script() string {
	return fmt.Sprintf("-- %s %d\n-- %s %s\n\n-- %s\n%s\n-- %s\n%s",
		tagVersion, m.Version,
		tagDesc, m.Description,
		tagUp, m.Up,
		tagDown, m.Down,
	)
}

// Checksum is the checksum of the canonical script, covering the version,
// description and both scripts.
func (m *Migration) Checksum() string {
	return Checksum(m.Script())
}

// UpChecksum is the checksum of the up script alone. This is the value stored
// in the changelog, since down scripts are never persisted.
func (m *Migration) UpChecksum() string {
	return Checksum(m.Up)
}

func (m *Migration) String() string {
	if m.Description == "" {
		return strconv.Itoa(m.Version)
	}

	return fmt.Sprintf("%d (%s)", m.Version, m.Description)
}

// LoadMigrationDir parses every regular, non-hidden file at the top level of
// dir and returns the runnable migrations sorted by version.
//
// Unreadable files and files that are not valid migrations are reported in
// MigrationDir.Skipped and do not cause an error. Two runnable files declaring
// the same version fail the whole load with a *DuplicateVersionError.
//
// Example usage:
//
//	dir, err := migrator.LoadMigrationDir(os.DirFS("db/migrations"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, s := range dir.Skipped {
//		log.Printf("skipping %s: %v", s.Path, s.Err)
//	}
func LoadMigrationDir(dir fs.FS) (*MigrationDir, error) {
	entries, err := fs.ReadDir(dir, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migration directory")
	}

	var (
		md   = &MigrationDir{}
		seen = make(map[int]*Migration, len(entries))
	)

	// NB: ReadDir returns entries sorted by filename.
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := entry.Name()
		m, err := ParseFile(dir, path)
		if err != nil {
			md.Skipped = append(md.Skipped, &Skipped{Path: path, Err: err})
			continue
		}

		if !m.Valid() {
			md.Skipped = append(md.Skipped, &Skipped{Path: path, Migration: m, Err: ErrInvalidMigration})
			continue
		}

		if prev, ok := seen[m.Version]; ok {
			return nil, &DuplicateVersionError{Version: m.Version, First: prev.Path, Second: m.Path}
		}

		seen[m.Version] = m
		md.Migrations = append(md.Migrations, m)
	}

	slices.SortFunc(md.Migrations, func(a, b *Migration) int {
		return cmp.Compare(a.Version, b.Version)
	})

	return md, nil
}

// Get returns the runnable migration with the given version, or nil.
func (d *MigrationDir) Get(version int) *Migration {
	i, found := slices.BinarySearchFunc(d.Migrations, version, func(m *Migration, v int) int {
		return cmp.Compare(m.Version, v)
	})
	if !found {
		return nil
	}

	return d.Migrations[i]
}

// MaxVersion returns the highest version declared in the directory, including
// files that were skipped as not yet runnable. Returns 0 for an empty
// directory.
func (d *MigrationDir) MaxVersion() int {
	maxVersion := 0
	for _, m := range d.Migrations {
		maxVersion = max(maxVersion, m.Version)
	}

	for _, s := range d.Skipped {
		if s.Migration != nil {
			maxVersion = max(maxVersion, s.Migration.Version)
		}
	}

	return maxVersion
}

// parseTag splits a comment line such as "-- @desc create users" into its tag
// and value.
func parseTag(line string) (string, string, bool) {
	rest, ok := strings.CutPrefix(line, "--")
	if !ok {
		return "", "", false
	}

	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "@") {
		return "", "", false
	}

	idx := strings.IndexFunc(rest, unicode.IsSpace)
	if idx < 0 {
		return rest, "", true
	}

	return rest[:idx], strings.TrimSpace(rest[idx:]), true
}

func parseVersion(value string) int {
	v, err := strconv.Atoi(value)
	if err != nil {
		return UnsetVersion
	}

	return v
}
