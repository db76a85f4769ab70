// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// TimeFormat is used by the text handler.
const TimeFormat = "2006-01-02 15:04:05.000"

// Options configures New.
type Options struct {
	// Level is one of debug, info, warn or error. Defaults to info.
	Level string

	// Format is text or json. Defaults to text.
	Format string

	// Writer receives log records. Defaults to os.Stderr.
	Writer io.Writer
}

// New returns a logger for opts. Text output is coloured only when Writer is
// a terminal.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	switch strings.ToLower(opts.Format) {
	case "", "text":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			NoColor:    !IsTerminal(w),
			TimeFormat: TimeFormat,
		})), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
	default:
		return nil, errors.Errorf("unknown log format %q", opts.Format)
	}
}

// ParseLevel converts a level name into a slog.Level. The empty string means
// info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "unknown log level %q", s)
	}

	return level, nil
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
