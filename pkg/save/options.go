// Package save holds the options shared by the operations that write a
// catalog to disk.
package save

import (
	"path/filepath"
	"strings"

	"github.com/agentstation/wxdata/pkg/errors"
)

// Format is a catalog file encoding.
type Format int

// Format constants.
const (
	// FormatAuto picks the encoding from the file extension.
	FormatAuto Format = iota
	FormatYAML
	FormatJSON
	FormatSQLite
)

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatAuto, FormatYAML, FormatJSON, FormatSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatSQLite:
		return "sqlite"
	}
	return "unknown"
}

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "sqlite", "sqlite3", "db":
		return FormatSQLite, nil
	}
	return FormatAuto, errors.NewValidationError("format", s, "must be one of auto, yaml, json, sqlite")
}

// FormatFromPath returns the format implied by the extension of path:
// .json is JSON, .db, .sqlite and .sqlite3 are SQLite, anything else YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatYAML
	}
}

// Options is the configuration for save.
type Options struct {
	format Format
}

// Format returns the format for the save options.
func (s *Options) Format() Format {
	return s.format
}

// Resolve returns the effective format for writing to path.
func (s *Options) Resolve(path string) Format {
	if s.format == FormatAuto {
		return FormatFromPath(path)
	}
	return s.format
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{format: FormatAuto}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithFormat forces an output format regardless of the file extension.
func WithFormat(f Format) Option {
	return func(s *Options) {
		s.format = f
	}
}
