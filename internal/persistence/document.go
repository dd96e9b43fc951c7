// Package persistence encodes catalogs in the versioned on-disk layout.
//
// A catalog document lists, per product, the files of that product in scan
// order with their temporal coverage. The same document can be stored as
// YAML, JSON or a SQLite database; Read detects the encoding from content.
package persistence

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/wxdata/pkg/constants"
	"github.com/agentstation/wxdata/pkg/errors"
)

// Document is the persisted form of a catalog.
type Document struct {
	Version     int       `yaml:"version" json:"version"`
	GeneratedAt utc.Time  `yaml:"generated_at" json:"generated_at"`
	Products    []Product `yaml:"products" json:"products"`
}

// Product is the ordered file list of one product.
type Product struct {
	ID    string `yaml:"id" json:"id"`
	Files []File `yaml:"files" json:"files"`
}

// File is one catalogued data file. Path is relative to the directory of the
// catalog file while persisted.
type File struct {
	Path      string    `yaml:"path" json:"path"`
	StartTime time.Time `yaml:"start_time" json:"start_time"`
	EndTime   time.Time `yaml:"end_time" json:"end_time"`
}

// NewDocument returns an empty document of the current version.
func NewDocument() *Document {
	return &Document{
		Version:     constants.SchemaVersion,
		GeneratedAt: utc.Now(),
	}
}

// Len returns the total number of files in the document.
func (d *Document) Len() int {
	n := 0
	for _, p := range d.Products {
		n += len(p.Files)
	}
	return n
}

// Validate checks that the document can be loaded as a catalog.
func (d *Document) Validate() error {
	if d.Version != constants.SchemaVersion {
		return errors.NewValidationError("version", d.Version,
			fmt.Sprintf("unsupported catalog version %d, want %d", d.Version, constants.SchemaVersion))
	}

	seen := make(map[string]bool, len(d.Products))
	for i, p := range d.Products {
		if p.ID == "" {
			return errors.NewValidationError(fmt.Sprintf("products[%d].id", i), p.ID, "product ID is required")
		}
		if seen[p.ID] {
			return errors.NewValidationError(fmt.Sprintf("products[%d].id", i), p.ID, "duplicate product "+p.ID)
		}
		seen[p.ID] = true

		for j, f := range p.Files {
			field := fmt.Sprintf("products[%d].files[%d]", i, j)
			if f.Path == "" {
				return errors.NewValidationError(field+".path", f.Path, "path is required")
			}
			if f.StartTime.IsZero() || f.EndTime.IsZero() {
				return errors.NewValidationError(field, f.Path, "start and end time are required")
			}
			if f.EndTime.Before(f.StartTime) {
				return errors.NewValidationError(field, f.Path, "end time precedes start time")
			}
		}
	}
	return nil
}
