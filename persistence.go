package wxdata

import (
	"context"

	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/save"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles catalog persistence operations.
type Persistence interface {
	// Store writes the current index to path
	Store(ctx context.Context, path string, opts ...save.Option) error

	// Load replaces the current index with the catalog at path
	Load(ctx context.Context, path string) error
}

// Store writes the current index to path.
func (c *client) Store(ctx context.Context, path string, opts ...save.Option) error {
	return c.Index().StoreContext(ctx, path, opts...)
}

// Load reads the catalog at path and makes it the current index. The
// current index is kept when loading fails.
func (c *client) Load(ctx context.Context, path string) error {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()

	idx, err := index.LoadContext(ctx, path, c.indexOptions()...)
	if err != nil {
		return err
	}
	c.replace(idx)
	return nil
}
