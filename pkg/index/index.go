// Package index catalogs data files by product and temporal coverage.
//
// An Index is built by scanning a directory tree with Generate, which
// classifies every file against a product registry and reads the time range
// of each classified file. The catalog can be queried by product and time
// window, files can be reopened by position, and the whole catalog can be
// stored next to the data and loaded again later without rescanning. Stored
// paths are relative to the catalog file, so the catalog keeps working when
// the data tree and catalog move together.
package index

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/wxdata/pkg/decompress"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/logging"
	"github.com/agentstation/wxdata/pkg/products"
	"github.com/agentstation/wxdata/pkg/products/builtin"
	"github.com/agentstation/wxdata/pkg/scratch"
)

// Index maps products to the ordered records of their files.
// It is safe for concurrent use; queries may run in parallel with each other.
type Index struct {
	mu    sync.RWMutex
	files map[products.ID][]Record
	order []products.ID

	registry    *products.Registry
	scratch     *scratch.Manager
	ownsScratch bool
	resolver    *decompress.Resolver
	logger      *zerolog.Logger
	workers     int
	ignore      []string
	progress    Progress
}

// New returns an empty Index.
func New(opts ...Option) *Index {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	idx := &Index{
		files:    make(map[products.ID][]Record),
		registry: cfg.registry,
		scratch:  cfg.scratch,
		logger:   logging.OrDefault(cfg.logger),
		workers:  cfg.workers,
		ignore:   cfg.ignore,
		progress: cfg.progress,
	}
	if idx.registry == nil {
		idx.registry = builtin.Registry()
	}
	if idx.scratch == nil {
		idx.scratch = scratch.NewManager(scratch.WithParent(cfg.scratchDir), scratch.WithLogger(idx.logger))
		idx.ownsScratch = true
	}
	idx.resolver = decompress.NewResolver(idx.scratch, decompress.WithLogger(idx.logger))
	return idx
}

// Registry returns the product registry of the index.
func (idx *Index) Registry() *products.Registry {
	return idx.registry
}

// Close releases the scratch area when the index owns it.
func (idx *Index) Close() error {
	if !idx.ownsScratch {
		return nil
	}
	return idx.scratch.Close()
}

// Add appends records to the catalog. Every record must be classified and
// valid; on error nothing is added.
func (idx *Index) Add(records ...Record) error {
	for _, rec := range records {
		if !rec.Classified() {
			return errors.NewValidationError("product", rec.Path, "only classified records can be indexed")
		}
		if err := rec.Validate(); err != nil {
			return err
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, rec := range records {
		idx.appendLocked(rec)
	}
	return nil
}

func (idx *Index) appendLocked(rec Record) {
	if _, ok := idx.files[rec.Product]; !ok {
		idx.order = append(idx.order, rec.Product)
	}
	idx.files[rec.Product] = append(idx.files[rec.Product], rec)
}

// Products returns the catalogued products in order of first appearance.
func (idx *Index) Products() []products.ID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]products.ID, len(idx.order))
	copy(out, idx.order)
	return out
}

// Has reports whether the catalog holds files of the product.
func (idx *Index) Has(ref products.Ref) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.files[ref.ProductID()]
	return ok
}

// Len returns the total number of records.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := 0
	for _, recs := range idx.files {
		n += len(recs)
	}
	return n
}

// Count returns the number of records of a product, 0 if it is absent.
func (idx *Index) Count(ref products.Ref) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.files[ref.ProductID()])
}

// ProductSummary describes the files of one product.
type ProductSummary struct {
	ID        products.ID `json:"id" yaml:"id"`
	Files     int         `json:"files" yaml:"files"`
	StartTime time.Time   `json:"start_time" yaml:"start_time"`
	EndTime   time.Time   `json:"end_time" yaml:"end_time"`
}

// Summary returns per-product file counts and overall coverage, in product
// order.
func (idx *Index) Summary() []ProductSummary {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]ProductSummary, 0, len(idx.order))
	for _, id := range idx.order {
		s := ProductSummary{ID: id}
		for _, rec := range idx.files[id] {
			s.Files++
			if s.StartTime.IsZero() || rec.StartTime.Before(s.StartTime) {
				s.StartTime = rec.StartTime
			}
			if rec.EndTime.After(s.EndTime) {
				s.EndTime = rec.EndTime
			}
		}
		out = append(out, s)
	}
	return out
}

// String lists the available products with their file counts.
func (idx *Index) String() string {
	var sb strings.Builder
	sb.WriteString(":: wxdata file index ::\n")
	sb.WriteString("\nAvailable products:")
	for _, s := range idx.Summary() {
		fmt.Fprintf(&sb, "\n\t%s (%d)", s.ID, s.Files)
	}
	sb.WriteString("\n")
	return sb.String()
}
