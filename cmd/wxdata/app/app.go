// Package app provides the application context and dependency management
// for the wxdata CLI. Configuration, logging and the lazily created client
// live here and are handed to the commands through appcontext.Interface.
package app

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/wxdata"
	"github.com/agentstation/wxdata/internal/appcontext"
	"github.com/agentstation/wxdata/internal/cmd/output"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/products"
)

var _ appcontext.Interface = (*App)(nil)

// App represents the wxdata application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// registry overrides the built-in products (tests)
	registry *products.Registry

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client wxdata.Client
}

// New creates a new App instance with the given version information.
// The configuration is loaded from the environment and config files and
// can be replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// CatalogPath returns the configured catalog file, or "" when none is set.
func (a *App) CatalogPath() string {
	return a.config.Catalog
}

// OutputFormat returns the configured output format. Without one, tables
// are used on a terminal and JSON otherwise.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Client returns the client, creating it lazily if needed. The configured
// catalog is loaded when the file exists; otherwise the index starts empty.
func (a *App) Client() (wxdata.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	opts := a.clientOptions()
	if a.config.Catalog != "" {
		if _, err := os.Stat(a.config.Catalog); err == nil {
			opts = append(opts, wxdata.WithCatalog(a.config.Catalog))
		} else {
			a.logger.Debug().Str("catalog", a.config.Catalog).Msg("Catalog not found, starting empty")
		}
	}

	c, err := wxdata.New(opts...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}

	a.client = c
	return c, nil
}

// ClientWithOptions returns a new client configured from the application
// plus opts, which take precedence. The caller closes it.
func (a *App) ClientWithOptions(opts ...wxdata.Option) (wxdata.Client, error) {
	all := append(a.clientOptions(), opts...)
	c, err := wxdata.New(all...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "with custom options", err)
	}
	return c, nil
}

// Shutdown releases the client, which stops auto-rescan and removes any
// extracted scratch files.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	c := a.client
	a.client = nil
	a.mu.Unlock()

	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close client during shutdown")
		return err
	}
	return nil
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions() []wxdata.Option {
	opts := []wxdata.Option{wxdata.WithLogger(a.logger)}

	if a.registry != nil {
		opts = append(opts, wxdata.WithRegistry(a.registry))
	}
	if a.config.Workers > 0 {
		opts = append(opts, wxdata.WithWorkers(a.config.Workers))
	}
	if a.config.ScratchDir != "" {
		opts = append(opts, wxdata.WithScratchDir(a.config.ScratchDir))
	}
	if len(a.config.Ignore) > 0 {
		opts = append(opts, wxdata.WithIgnore(a.config.Ignore...))
	}

	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRegistry replaces the built-in product registry.
func WithRegistry(r *products.Registry) Option {
	return func(a *App) error {
		if r == nil {
			return errors.NewValidationError("registry", nil, "cannot be nil")
		}
		a.registry = r
		return nil
	}
}

// WithClient sets a custom client (useful for testing).
func WithClient(c wxdata.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
