package wxdata

import (
	"context"
	"sync"
	"time"

	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/logging"
	"github.com/agentstation/wxdata/pkg/scratch"
)

// Compile-time interface check to ensure proper implementation.
var _ Catalog = (*client)(nil)

// Catalog provides access to the current index.
type Catalog interface {
	// Index returns the current index. A rescan or load replaces it, so
	// callers should not hold on to it across those calls.
	Index() *index.Index
}

// Index returns the current index.
func (c *client) Index() *index.Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index
}

// Client manages an index with scans, persistence, automatic rescans and
// event hooks.
type Client interface {

	// Catalog provides access to the current index
	Catalog

	// Scanner adds files to the index
	Scanner

	// Persistence stores and loads the index
	Persistence

	// AutoRescanner provides access to automatic rescan controls
	AutoRescanner

	// Hooks provides access to event callback registration
	Hooks

	// Close stops automatic rescans and removes the scratch area
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	// scanMu serializes Generate, Rescan and Load so a finished scan is
	// never swapped out by a concurrent rebuild
	scanMu sync.Mutex

	// index is the working catalog, roots the trees scanned into it
	mu    sync.RWMutex
	index *index.Index
	roots []string

	// scratch is shared by every index the client creates
	scratch *scratch.Manager

	// auto rescan state
	rescanTicker *time.Ticker      // ticker to trigger rescans
	stopCh       chan struct{}      // stop channel to stop rescans
	rescanCancel context.CancelFunc // cancel function for the rescan goroutine
	hooks        *hooks             // event hooks for catalog changes
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{
		options: o,
		scratch: scratch.NewManager(
			scratch.WithParent(o.scratchDir),
			scratch.WithLogger(logging.OrDefault(o.logger)),
		),
		stopCh: make(chan struct{}),
		hooks:  newHooks(),
	}
	c.index = c.newIndex()

	if o.catalogPath != "" {
		if err := c.Load(context.Background(), o.catalogPath); err != nil {
			_ = c.scratch.Close()
			return nil, errors.WrapResource("load", "catalog", o.catalogPath, err)
		}
	}

	if o.autoRescanEnabled {
		if err := c.AutoRescanOn(); err != nil {
			_ = c.scratch.Close()
			return nil, errors.WrapResource("start", "auto-rescan", "", err)
		}
	}

	return c, nil
}

// newIndex creates an empty index sharing the client's scratch area.
func (c *client) newIndex() *index.Index {
	return index.New(c.indexOptions()...)
}

func (c *client) indexOptions() []index.Option {
	o := c.options
	opts := []index.Option{
		index.WithScratch(c.scratch),
		index.WithWorkers(o.workers),
		index.WithIgnore(o.ignore...),
	}
	if o.registry != nil {
		opts = append(opts, index.WithRegistry(o.registry))
	}
	if o.logger != nil {
		opts = append(opts, index.WithLogger(o.logger))
	}
	if o.progress != nil {
		opts = append(opts, index.WithProgress(o.progress))
	}
	return opts
}

// replace swaps in a new index and fires the change hooks.
func (c *client) replace(next *index.Index) {
	c.mu.Lock()
	prev := c.index
	c.index = next
	c.mu.Unlock()

	c.hooks.triggerCatalogUpdate(prev, next)
}
