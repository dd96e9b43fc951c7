package index

import (
	"time"

	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/products"
	"github.com/agentstation/wxdata/pkg/scratch"
)

// QueryOption restricts the records returned by Files.
type QueryOption func(*window)

// window is a half-open time interval; a nil bound is unbounded.
type window struct {
	start *time.Time
	end   *time.Time
}

// Since keeps records that end at or after t.
func Since(t time.Time) QueryOption {
	return func(w *window) {
		w.start = &t
	}
}

// Until keeps records that start before t.
func Until(t time.Time) QueryOption {
	return func(w *window) {
		w.end = &t
	}
}

// Between keeps records intersecting [start, end).
func Between(start, end time.Time) QueryOption {
	return func(w *window) {
		w.start = &start
		w.end = &end
	}
}

// includes reports whether rec intersects the window: it must end at or
// after the start and begin strictly before the end.
func (w window) includes(rec Record) bool {
	if w.start != nil && rec.EndTime.Before(*w.start) {
		return false
	}
	if w.end != nil && !rec.StartTime.Before(*w.end) {
		return false
	}
	return true
}

// Files returns the records of a product in scan order, optionally
// restricted to a time window. The returned slice is a copy.
func (idx *Index) Files(ref products.Ref, opts ...QueryOption) ([]Record, error) {
	var w window
	for _, opt := range opts {
		opt(&w)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	id := ref.ProductID()
	records, ok := idx.files[id]
	if !ok {
		return nil, errors.NewNotFoundError("indexed product", string(id))
	}

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if w.includes(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Record returns the i-th record of a product.
func (idx *Index) Record(ref products.Ref, i int) (Record, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	id := ref.ProductID()
	records, ok := idx.files[id]
	if !ok {
		return Record{}, errors.NewNotFoundError("indexed product", string(id))
	}
	if i < 0 || i >= len(records) {
		return Record{}, errors.NewRangeError(string(id), i, len(records))
	}
	return records[i], nil
}

// Open opens the i-th file of a product with the product's reader. The
// product must be registered and catalogued. Archived files are extracted
// into the scratch area; closing the returned reader deletes the extracted
// copy.
func (idx *Index) Open(ref products.Ref, i int) (products.Reader, error) {
	d, err := idx.registry.Get(ref)
	if err != nil {
		return nil, err
	}
	rec, err := idx.Record(d, i)
	if err != nil {
		return nil, err
	}

	path, art, err := idx.resolver.Resolve(rec.Path)
	if err != nil {
		return nil, err
	}
	reader, err := d.Open(path)
	if err != nil {
		_ = art.Release()
		return nil, errors.NewExtractionError(string(d.ID), rec.Path, err)
	}

	idx.logger.Debug().Str("product", string(d.ID)).Int("position", i).Str("path", rec.Path).Msg("Opened file")
	return &session{Reader: reader, artifact: art}, nil
}

// session ties a reader to the scratch copy it reads from.
type session struct {
	products.Reader
	artifact *scratch.Artifact
}

// Close closes the reader, then deletes the scratch copy.
func (s *session) Close() error {
	err := s.Reader.Close()
	if rerr := s.artifact.Release(); err == nil {
		err = rerr
	}
	return err
}
