// Package hdf4test builds small HDF4 files for tests.
package hdf4test

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"testing"

	"github.com/agentstation/wxdata/internal/hdf4"
	"github.com/agentstation/wxdata/pkg/constants"
)

// Column is one vdata field. Values must be a string (Char8) or a slice of
// float32, float64, int16, int32, uint8 or uint16 holding Records*Order values.
type Column struct {
	Name   string
	Values any
	Order  int // defaults to 1, or to the string length for strings
}

type vdata struct {
	name      string
	class     string
	interlace hdf4.Interlace
	records   int
	columns   []Column
}

// Builder accumulates vdatas and serializes them as an HDF4 file.
type Builder struct {
	vdatas       []vdata
	littleEndian bool
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// LittleEndian makes the builder encode numbers little-endian and flag the
// field types accordingly.
func (b *Builder) LittleEndian() *Builder {
	b.littleEndian = true
	return b
}

// AddAttribute adds an HDF-EOS style attribute.
func (b *Builder) AddAttribute(name string, value any) *Builder {
	col := Column{Name: hdf4.AttributeField}
	switch v := value.(type) {
	case string:
		col.Values = v
	case float32:
		col.Values = []float32{v}
	case float64:
		col.Values = []float64{v}
	case int32:
		col.Values = []int32{v}
	case int:
		col.Values = []int32{int32(v)}
	default:
		col.Values = value
		col.Order = length(value)
	}
	b.vdatas = append(b.vdatas, vdata{name: name, class: hdf4.AttributeClass, records: 1, columns: []Column{col}})
	return b
}

// AddFloat32 adds a single-field float32 vdata with one value per record.
func (b *Builder) AddFloat32(name string, values []float32) *Builder {
	return b.AddVdata(name, "", hdf4.FullInterlace, len(values), Column{Name: name, Values: values})
}

// AddVdata adds an arbitrary vdata.
func (b *Builder) AddVdata(name, class string, interlace hdf4.Interlace, records int, columns ...Column) *Builder {
	b.vdatas = append(b.vdatas, vdata{name: name, class: class, interlace: interlace, records: records, columns: columns})
	return b
}

// Bytes serializes the file.
func (b *Builder) Bytes() []byte {
	type element struct {
		tag  uint16
		ref  uint16
		data []byte
	}
	var elements []element
	for i, vd := range b.vdatas {
		ref := uint16(i + 1)
		header, storage := b.encode(vd)
		elements = append(elements, element{hdf4.TagVH, ref, header}, element{hdf4.TagVS, ref, storage})
	}

	// One descriptor block right after the signature, padded with a NULL
	// descriptor, followed by the element data.
	ndds := len(elements) + 1
	dataStart := len(hdf4.Magic) + 6 + ndds*12

	var out bytes.Buffer
	out.Write(hdf4.Magic[:])
	be := binary.BigEndian
	_ = binary.Write(&out, be, uint16(ndds))
	_ = binary.Write(&out, be, uint32(0))

	offset := dataStart
	for _, e := range elements {
		_ = binary.Write(&out, be, e.tag)
		_ = binary.Write(&out, be, e.ref)
		_ = binary.Write(&out, be, uint32(offset))
		_ = binary.Write(&out, be, uint32(len(e.data)))
		offset += len(e.data)
	}
	_ = binary.Write(&out, be, hdf4.TagNull)
	_ = binary.Write(&out, be, uint16(0))
	_ = binary.Write(&out, be, uint32(0))
	_ = binary.Write(&out, be, uint32(0))

	for _, e := range elements {
		out.Write(e.data)
	}
	return out.Bytes()
}

// WriteFile writes the file to path.
func (b *Builder) WriteFile(t testing.TB, path string) string {
	t.Helper()
	if err := os.WriteFile(path, b.Bytes(), constants.FilePermissions); err != nil {
		t.Fatalf("writing HDF4 fixture: %v", err)
	}
	return path
}

type columnLayout struct {
	typ    hdf4.DataType
	order  int
	size   int
	offset int
	data   []byte // all records, contiguous
}

func (b *Builder) encode(vd vdata) (header, storage []byte) {
	var order binary.ByteOrder = binary.BigEndian
	if b.littleEndian {
		order = binary.LittleEndian
	}

	layouts := make([]columnLayout, len(vd.columns))
	recordSize := 0
	for i, c := range vd.columns {
		typ, data := encodeValues(order, c.Values)
		n := c.Order
		if n == 0 {
			if s, ok := c.Values.(string); ok {
				n = len(s)
			} else {
				n = 1
			}
		}
		layouts[i] = columnLayout{typ: typ, order: n, size: n * typ.Size(), offset: recordSize, data: data}
		if len(data) != vd.records*layouts[i].size {
			panic(fmt.Sprintf("hdf4test: column %s holds %d bytes, want %d", c.Name, len(data), vd.records*layouts[i].size))
		}
		recordSize += layouts[i].size
	}

	be := binary.BigEndian
	var h bytes.Buffer
	_ = binary.Write(&h, be, int16(vd.interlace))
	_ = binary.Write(&h, be, int32(vd.records))
	_ = binary.Write(&h, be, uint16(recordSize))
	_ = binary.Write(&h, be, int16(len(vd.columns)))
	for _, l := range layouts {
		raw := uint16(l.typ)
		if b.littleEndian {
			raw |= 0x4000
		}
		_ = binary.Write(&h, be, raw)
	}
	for _, l := range layouts {
		_ = binary.Write(&h, be, uint16(l.size))
	}
	for _, l := range layouts {
		_ = binary.Write(&h, be, uint16(l.offset))
	}
	for _, l := range layouts {
		_ = binary.Write(&h, be, uint16(l.order))
	}
	for _, c := range vd.columns {
		writeString(&h, c.Name)
	}
	writeString(&h, vd.name)
	writeString(&h, vd.class)
	// extag, exref, version, more
	_ = binary.Write(&h, be, [4]uint16{0, 0, 3, 0})

	var s bytes.Buffer
	if vd.interlace == hdf4.NoInterlace {
		for _, l := range layouts {
			s.Write(l.data)
		}
	} else {
		for rec := 0; rec < vd.records; rec++ {
			for _, l := range layouts {
				s.Write(l.data[rec*l.size : (rec+1)*l.size])
			}
		}
	}
	return h.Bytes(), s.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
}

func encodeValues(order binary.ByteOrder, values any) (hdf4.DataType, []byte) {
	var buf bytes.Buffer
	switch v := values.(type) {
	case string:
		return hdf4.Char8, []byte(v)
	case []float32:
		for _, x := range v {
			_ = binary.Write(&buf, order, math.Float32bits(x))
		}
		return hdf4.Float32, buf.Bytes()
	case []float64:
		for _, x := range v {
			_ = binary.Write(&buf, order, math.Float64bits(x))
		}
		return hdf4.Float64, buf.Bytes()
	case []int16:
		_ = binary.Write(&buf, order, v)
		return hdf4.Int16, buf.Bytes()
	case []int32:
		_ = binary.Write(&buf, order, v)
		return hdf4.Int32, buf.Bytes()
	case []uint8:
		return hdf4.UInt8, append([]byte(nil), v...)
	case []uint16:
		_ = binary.Write(&buf, order, v)
		return hdf4.UInt16, buf.Bytes()
	}
	panic(fmt.Sprintf("hdf4test: unsupported column type %T", values))
}

func length(values any) int {
	switch v := values.(type) {
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	case []int16:
		return len(v)
	case []int32:
		return len(v)
	case []uint8:
		return len(v)
	case []uint16:
		return len(v)
	}
	return 1
}
