// Package readers holds the pieces shared by the HDF4-backed product readers.
package readers

import (
	"sort"

	"github.com/agentstation/wxdata/internal/hdf4"
	"github.com/agentstation/wxdata/pkg/errors"
)

// HDF exposes the attributes and vdatas of an HDF4 file by name.
// Product readers embed it and add their own time extraction.
type HDF struct {
	Path string
	File *hdf4.File
}

// OpenHDF opens the HDF4 file at path.
func OpenHDF(path string) (*HDF, error) {
	f, err := hdf4.Open(path)
	if err != nil {
		return nil, err
	}
	return &HDF{Path: path, File: f}, nil
}

// Attributes lists attribute and vdata names, sorted.
func (h *HDF) Attributes() []string {
	names := append(h.File.AttributeNames(), h.File.VdataNames()...)
	sort.Strings(names)
	return names
}

// Get returns an attribute value, or the values of a vdata. A single-field
// vdata yields that field's values; a multi-field vdata yields a map keyed by
// field name.
func (h *HDF) Get(name string) (any, error) {
	if v, err := h.File.Attribute(name); err == nil {
		return v, nil
	}
	vd, err := h.File.Vdata(name)
	if err != nil {
		return nil, errors.NewNotFoundError("attribute", name)
	}
	if len(vd.Fields) == 1 {
		return vd.Values(vd.Fields[0].Name)
	}
	out := make(map[string]any, len(vd.Fields))
	for _, f := range vd.Fields {
		v, err := vd.Values(f.Name)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

// StringAttribute returns a character attribute.
func (h *HDF) StringAttribute(name string) (string, error) {
	v, err := h.File.Attribute(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewValidationError(name, v, "attribute is not a string")
	}
	return s, nil
}

// LastValue returns the last value of a numeric single-field vdata.
func (h *HDF) LastValue(name string) (float64, error) {
	vd, err := h.File.Vdata(name)
	if err != nil {
		return 0, err
	}
	field := name
	if _, ok := vd.Field(field); !ok && len(vd.Fields) > 0 {
		field = vd.Fields[0].Name
	}
	values, err := vd.Float64s(field)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, errors.NewValidationError(name, nil, "no values")
	}
	return values[len(values)-1], nil
}

// Close closes the file.
func (h *HDF) Close() error {
	return h.File.Close()
}
