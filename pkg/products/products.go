// Package products defines the product registry used to classify data files.
//
// A product is a family of files sharing a naming convention and a binary
// layout, for example CloudSat 2B-GEOPROF granules. Each product is described
// by a Descriptor that pairs an identifier with a file name pattern and a
// factory for the Reader able to extract metadata from such files.
package products

import (
	"regexp"
	"time"
)

// ID is a product identifier such as "CloudSat_2b_GeoProf".
type ID string

// String returns the string representation of a product ID.
func (id ID) String() string {
	return string(id)
}

// ProductID implements Ref.
func (id ID) ProductID() ID {
	return id
}

// Ref refers to a product either by its ID or by its Descriptor.
type Ref interface {
	ProductID() ID
}

// Reader gives access to the metadata and variables of one data file.
//
// Readers are not safe for concurrent use. A Reader holds the underlying file
// open until Close is called.
type Reader interface {
	// StartTime returns the beginning of the file's temporal coverage.
	StartTime() (time.Time, error)

	// EndTime returns the end of the file's temporal coverage.
	EndTime() (time.Time, error)

	// Get returns the named attribute or variable.
	Get(name string) (any, error)

	// Attributes lists the names accepted by Get.
	Attributes() []string

	Close() error
}

// ReaderFunc opens a Reader on the file at path.
type ReaderFunc func(path string) (Reader, error)

// Descriptor describes a product: its identifier, the pattern its file names
// follow and the reader able to open its files.
type Descriptor struct {
	ID        ID
	Pattern   *regexp.Regexp
	NewReader ReaderFunc
}

// ProductID implements Ref.
func (d Descriptor) ProductID() ID {
	return d.ID
}

// Matches reports whether the base name matches the product pattern.
// Matching is anchored at the start of name only.
func (d Descriptor) Matches(name string) bool {
	if d.Pattern == nil {
		return false
	}
	loc := d.Pattern.FindStringIndex(name)
	return loc != nil && loc[0] == 0
}

// Open opens a reader on path with the product's reader factory.
func (d Descriptor) Open(path string) (Reader, error) {
	return d.NewReader(path)
}
