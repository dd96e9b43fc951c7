package index

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/products"
	"github.com/agentstation/wxdata/pkg/scratch"
)

// Option configures an Index.
type Option func(*config)

type config struct {
	registry   *products.Registry
	scratch    *scratch.Manager
	scratchDir string
	logger     *zerolog.Logger
	workers    int
	ignore     []string
	progress   Progress
}

func defaultConfig() *config {
	return &config{workers: constants.DefaultWorkers}
}

// WithRegistry sets the product registry used to classify and open files.
// The built-in products are used by default.
func WithRegistry(r *products.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithScratch sets the scratch area archives are extracted into. The caller
// keeps ownership of m; Index.Close does not close it.
func WithScratch(m *scratch.Manager) Option {
	return func(c *config) {
		c.scratch = m
	}
}

// WithScratchDir places the index's own scratch area under dir.
func WithScratchDir(dir string) Option {
	return func(c *config) {
		c.scratchDir = dir
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithWorkers sets how many files Generate reads at once. Values below 1
// mean 1; the value is capped at constants.MaxWorkers.
func WithWorkers(n int) Option {
	return func(c *config) {
		switch {
		case n < 1:
			n = 1
		case n > constants.MaxWorkers:
			n = constants.MaxWorkers
		}
		c.workers = n
	}
}

// WithIgnore adds gitignore-style patterns excluding paths from scans.
// Patterns are matched against paths relative to the scan root.
func WithIgnore(patterns ...string) Option {
	return func(c *config) {
		c.ignore = append(c.ignore, patterns...)
	}
}

// WithProgress sets the receiver of scan progress.
func WithProgress(p Progress) Option {
	return func(c *config) {
		c.progress = p
	}
}
