package wxdata

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/products"
)

// Option is a function that configures a Client instance
type Option func(*options) error

// options holds the client configuration
type options struct {
	registry   *products.Registry
	logger     *zerolog.Logger
	workers    int
	scratchDir string
	ignore     []string
	progress   index.Progress

	// catalog to load on creation
	catalogPath string

	// auto rescan settings
	autoRescanEnabled  bool
	autoRescanInterval time.Duration
}

// defaults returns the default client configuration
func defaults() *options {
	return &options{
		workers:            constants.DefaultWorkers,
		autoRescanInterval: constants.DefaultRescanInterval,
	}
}

// apply applies the given options in order
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithRegistry configures the product registry, the built-in products by default
func WithRegistry(r *products.Registry) Option {
	return func(o *options) error {
		if r == nil {
			return errors.NewValidationError("registry", nil, "registry cannot be nil")
		}
		o.registry = r
		return nil
	}
}

// WithLogger configures the logger used by the client and its indexes
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithWorkers configures how many files a scan processes at once
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("workers", n, "at least one worker is required")
		}
		o.workers = n
		return nil
	}
}

// WithScratchDir configures the parent directory of the extraction area,
// the system temp directory by default
func WithScratchDir(dir string) Option {
	return func(o *options) error {
		o.scratchDir = dir
		return nil
	}
}

// WithIgnore adds gitignore-style patterns excluded from every scan
func WithIgnore(patterns ...string) Option {
	return func(o *options) error {
		o.ignore = append(o.ignore, patterns...)
		return nil
	}
}

// WithProgress configures a scan progress receiver
func WithProgress(p index.Progress) Option {
	return func(o *options) error {
		o.progress = p
		return nil
	}
}

// WithCatalog loads the catalog at path when the client is created
func WithCatalog(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.NewValidationError("catalog", path, "catalog path cannot be empty")
		}
		o.catalogPath = path
		return nil
	}
}

// WithAutoRescan enables periodic rescans of the scanned trees
func WithAutoRescan(enabled bool) Option {
	return func(o *options) error {
		o.autoRescanEnabled = enabled
		return nil
	}
}

// WithAutoRescanInterval configures how often the scanned trees are rescanned
func WithAutoRescanInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return errors.NewValidationError("autoRescanInterval", interval, "rescan interval must be positive")
		}
		o.autoRescanInterval = interval
		return nil
	}
}
