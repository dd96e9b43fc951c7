package products

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/agentstation/wxdata/pkg/errors"
)

// Registry is an ordered set of product descriptors.
// Classification tries descriptors in registration order.
type Registry struct {
	mu          sync.RWMutex
	descriptors []Descriptor
	byID        map[ID]int
}

// NewRegistry returns a registry holding the given descriptors.
// It panics if a descriptor is invalid or registered twice; use Register to
// handle those cases as errors.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{byID: make(map[ID]int)}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Register appends a descriptor to the registry.
func (r *Registry) Register(d Descriptor) error {
	switch {
	case d.ID == "":
		return errors.NewValidationError("id", d.ID, "product ID is required")
	case d.Pattern == nil:
		return errors.NewValidationError("pattern", d.ID, "file name pattern is required")
	case d.NewReader == nil:
		return errors.NewValidationError("reader", d.ID, "reader factory is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[d.ID]; exists {
		return fmt.Errorf("product %s: %w", d.ID, errors.ErrAlreadyExists)
	}
	r.byID[d.ID] = len(r.descriptors)
	r.descriptors = append(r.descriptors, d)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(id ID, pattern string, newReader ReaderFunc) {
	if err := r.Register(Descriptor{ID: id, Pattern: regexp.MustCompile(pattern), NewReader: newReader}); err != nil {
		panic(err)
	}
}

// Classify returns the first descriptor whose pattern matches the base name
// of path. It reports false when no product matches.
func (r *Registry) Classify(path string) (Descriptor, bool) {
	name := filepath.Base(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.descriptors {
		if d.Matches(name) {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Get returns the descriptor registered for ref.
func (r *Registry) Get(ref Ref) (Descriptor, error) {
	id := ref.ProductID()

	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return Descriptor{}, errors.NewNotFoundError("product", string(id))
	}
	return r.descriptors[i], nil
}

// Has reports whether ref is registered.
func (r *Registry) Has(ref Ref) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[ref.ProductID()]
	return ok
}

// List returns the descriptors in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// IDs returns the registered product IDs in registration order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]ID, len(r.descriptors))
	for i, d := range r.descriptors {
		ids[i] = d.ID
	}
	return ids
}

// Len returns the number of registered products.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}
