package index

import (
	"fmt"
	"time"

	"github.com/agentstation/wxdata/pkg/decompress"
	"github.com/agentstation/wxdata/pkg/errors"
	"github.com/agentstation/wxdata/pkg/products"
)

// Record references one data file. Unclassified records carry only a path;
// classified records carry the product and the file's temporal coverage.
type Record struct {
	Path      string
	Product   products.ID
	StartTime time.Time
	EndTime   time.Time
}

// Classified reports whether the record belongs to a product.
func (r Record) Classified() bool {
	return r.Product != ""
}

// Validate checks the record invariant: a product is set exactly when both
// times are set, and the start does not come after the end.
func (r Record) Validate() error {
	if r.Path == "" {
		return errors.NewValidationError("path", r.Path, "path is required")
	}
	if !r.Classified() {
		if !r.StartTime.IsZero() || !r.EndTime.IsZero() {
			return errors.NewValidationError("product", r.Path, "unclassified record carries a time range")
		}
		return nil
	}
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return errors.NewValidationError("time", r.Path, "classified record without a time range")
	}
	if r.EndTime.Before(r.StartTime) {
		return errors.NewValidationError("time", r.Path,
			fmt.Sprintf("end %s precedes start %s", r.EndTime.Format(time.RFC3339), r.StartTime.Format(time.RFC3339)))
	}
	return nil
}

// String returns a short description of the record.
func (r Record) String() string {
	if !r.Classified() {
		return "unclassified file: " + r.Path
	}
	return string(r.Product) + " file: " + r.Path
}

// NewRecord classifies path and, for classified files, opens the file with
// the product's reader to read its time range. Archives are extracted
// through resolver (nil disables decompression) and the extracted copy is
// deleted before NewRecord returns, whatever the outcome.
//
// Unclassified files produce a record without product and no I/O happens.
// A classified file whose metadata cannot be read yields an
// *errors.ExtractionError.
func NewRecord(path string, registry *products.Registry, resolver *decompress.Resolver) (Record, error) {
	d, ok := registry.Classify(path)
	if !ok {
		return Record{Path: path}, nil
	}

	start, end, err := readTimes(d, path, resolver)
	if err != nil {
		return Record{Path: path}, errors.NewExtractionError(string(d.ID), path, err)
	}

	rec := Record{Path: path, Product: d.ID, StartTime: start, EndTime: end}
	if err := rec.Validate(); err != nil {
		return Record{Path: path}, errors.NewExtractionError(string(d.ID), path, err)
	}
	return rec, nil
}

func readTimes(d products.Descriptor, path string, resolver *decompress.Resolver) (start, end time.Time, err error) {
	effective := path
	if resolver != nil {
		resolved, art, err := resolver.Resolve(path)
		if err != nil {
			return start, end, err
		}
		defer art.Release() //nolint:errcheck // best effort cleanup of scratch copy
		effective = resolved
	}

	reader, err := d.Open(effective)
	if err != nil {
		return start, end, err
	}
	defer reader.Close()

	if start, err = reader.StartTime(); err != nil {
		return start, end, fmt.Errorf("start time: %w", err)
	}
	if end, err = reader.EndTime(); err != nil {
		return start, end, fmt.Errorf("end time: %w", err)
	}
	return start, end, nil
}
