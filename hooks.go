package wxdata

import (
	"slices"
	"sync"

	"github.com/agentstation/wxdata/pkg/index"
	"github.com/agentstation/wxdata/pkg/products"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for catalog events
type (
	// ProductAddedHook is called when a product first appears in the catalog
	ProductAddedHook func(id products.ID, files int)

	// ProductRemovedHook is called when a product disappears from the catalog
	ProductRemovedHook func(id products.ID)

	// ScanCompleteHook is called after every scan, including failed ones
	ScanCompleteHook func(stats *index.ScanStats)
)

// Hooks provides event callback registration. Hooks run synchronously while
// the client holds its scan lock; a hook must not call Generate, Rescan or
// Load.
type Hooks interface {
	OnProductAdded(ProductAddedHook)
	OnProductRemoved(ProductRemovedHook)
	OnScanComplete(ScanCompleteHook)
}

// OnProductAdded registers a callback for when products are added.
func (c *client) OnProductAdded(fn ProductAddedHook) {
	c.hooks.onAdded(fn)
}

// OnProductRemoved registers a callback for when products are removed.
func (c *client) OnProductRemoved(fn ProductRemovedHook) {
	c.hooks.onRemoved(fn)
}

// OnScanComplete registers a callback for when a scan ends.
func (c *client) OnScanComplete(fn ScanCompleteHook) {
	c.hooks.onScan(fn)
}

// hooks manages event callbacks for catalog changes
type hooks struct {
	mu               sync.RWMutex
	onProductAdded   []ProductAddedHook
	onProductRemoved []ProductRemovedHook
	onScanComplete   []ScanCompleteHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) onAdded(fn ProductAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProductAdded = append(h.onProductAdded, fn)
}

func (h *hooks) onRemoved(fn ProductRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onProductRemoved = append(h.onProductRemoved, fn)
}

func (h *hooks) onScan(fn ScanCompleteHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onScanComplete = append(h.onScanComplete, fn)
}

// triggerCatalogUpdate compares the products of two indexes and triggers
// the added and removed hooks
func (h *hooks) triggerCatalogUpdate(prev, next *index.Index) {
	var before []products.ID
	if prev != nil {
		before = prev.Products()
	}
	h.triggerProductChanges(before, next)
}

// triggerProductChanges fires hooks for the difference between the product
// list before a change and the current products of idx
func (h *hooks) triggerProductChanges(before []products.ID, idx *index.Index) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	after := idx.Products()
	for _, id := range after {
		if !slices.Contains(before, id) {
			for _, hook := range h.onProductAdded {
				hook(id, idx.Count(id))
			}
		}
	}
	for _, id := range before {
		if !slices.Contains(after, id) {
			for _, hook := range h.onProductRemoved {
				hook(id)
			}
		}
	}
}

// triggerScanComplete calls the scan hooks with stats
func (h *hooks) triggerScanComplete(stats *index.ScanStats) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onScanComplete {
		hook(stats)
	}
}
