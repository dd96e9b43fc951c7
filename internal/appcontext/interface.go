// Package appcontext provides the shared application context interface
// used by all commands. This eliminates interface duplication across
// command packages and provides a single source of truth for app dependencies.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/wxdata"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/wxdata/app implements this interface, providing
// dependency injection for commands while keeping them testable.
type Interface interface {
	// Client returns the default client, creating it lazily. The configured
	// catalog is loaded when the file exists.
	Client() (wxdata.Client, error)

	// ClientWithOptions creates a new client from the configuration plus
	// opts. The caller closes it.
	ClientWithOptions(...wxdata.Option) (wxdata.Client, error)

	// CatalogPath returns the configured catalog file.
	CatalogPath() string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
