package wxdata

import (
	"context"
	"slices"

	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/logging"
)

// Compile-time interface check to ensure proper implementation.
var _ Scanner = (*client)(nil)

// Scanner adds files to the index.
type Scanner interface {
	// Generate scans root into the current index. The root is remembered
	// for Rescan.
	Generate(ctx context.Context, root string) (*index.ScanStats, error)

	// Rescan scans every remembered root into a fresh index and replaces
	// the current one when all scans succeed.
	Rescan(ctx context.Context) ([]*index.ScanStats, error)

	// Roots returns the remembered roots in scan order.
	Roots() []string
}

// Generate scans root into the current index.
func (c *client) Generate(ctx context.Context, root string) (*index.ScanStats, error) {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()

	idx := c.Index()
	before := idx.Products()

	stats, err := idx.Generate(ctx, root)
	if stats == nil {
		return nil, err
	}
	c.remember(stats.Root)
	c.hooks.triggerProductChanges(before, idx)
	c.hooks.triggerScanComplete(stats)
	return stats, err
}

// Rescan rebuilds the index from the remembered roots. It waits for a
// running Generate so the tree being scanned is included.
func (c *client) Rescan(ctx context.Context) ([]*index.ScanStats, error) {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()

	roots := c.Roots()
	if len(roots) == 0 {
		return nil, errors.NewValidationError("roots", nil, "nothing to rescan, no tree has been scanned")
	}

	logger := logging.OrDefault(c.options.logger)
	logger.Info().Int("roots", len(roots)).Msg("Rescanning")

	next := c.newIndex()
	all := make([]*index.ScanStats, 0, len(roots))
	for _, root := range roots {
		stats, err := next.Generate(ctx, root)
		if stats != nil {
			all = append(all, stats)
			c.hooks.triggerScanComplete(stats)
		}
		if err != nil {
			return all, errors.WrapResource("rescan", "tree", root, err)
		}
	}

	c.replace(next)
	return all, nil
}

// Roots returns the remembered roots.
func (c *client) Roots() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.roots)
}

func (c *client) remember(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(c.roots, root) {
		c.roots = append(c.roots, root)
	}
}
