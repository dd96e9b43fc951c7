package hdf4

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/agentstation/wxdata/pkg/errors"
)

// DataType is an HDF4 number type.
type DataType uint16

// Supported number types.
const (
	UChar8  DataType = 3
	Char8   DataType = 4
	Float32 DataType = 5
	Float64 DataType = 6
	Int8    DataType = 20
	UInt8   DataType = 21
	Int16   DataType = 22
	UInt16  DataType = 23
	Int32   DataType = 24
	UInt32  DataType = 25
)

const (
	nativeFlag uint16 = 0x1000
	litEndFlag uint16 = 0x4000
)

// Size returns the size in bytes of one value, or 0 for unsupported types.
func (t DataType) Size() int {
	switch t {
	case UChar8, Char8, Int8, UInt8:
		return 1
	case Int16, UInt16:
		return 2
	case Float32, Int32, UInt32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// String returns the HDF4 name of the type.
func (t DataType) String() string {
	switch t {
	case UChar8:
		return "uchar8"
	case Char8:
		return "char8"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int8:
		return "int8"
	case UInt8:
		return "uint8"
	case Int16:
		return "int16"
	case UInt16:
		return "uint16"
	case Int32:
		return "int32"
	case UInt32:
		return "uint32"
	}
	return fmt.Sprintf("type(%d)", uint16(t))
}

// Interlace is the storage layout of vdata records.
type Interlace int16

const (
	// FullInterlace stores records one after another.
	FullInterlace Interlace = 0
	// NoInterlace stores each field's values for all records contiguously.
	NoInterlace Interlace = 1
)

// Field describes one column of a vdata.
type Field struct {
	Name   string
	Type   DataType
	Order  int // values per record
	Offset int // byte offset inside a record
	Size   int // bytes per record

	rawType      uint16
	littleEndian bool
}

// Vdata is a table of fixed-size records.
type Vdata struct {
	Ref        uint16
	Name       string
	Class      string
	Interlace  Interlace
	Records    int
	RecordSize int
	Fields     []Field

	file       *File
	dataOffset int64
	dataLength int64
}

// Field returns the named field.
func (v *Vdata) Field(name string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the field names in declaration order.
func (v *Vdata) FieldNames() []string {
	names := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		names[i] = f.Name
	}
	return names
}

// Raw returns the bytes of the named field for every record, concatenated.
func (v *Vdata) Raw(field string) ([]byte, Field, error) {
	f, ok := v.Field(field)
	if !ok {
		return nil, Field{}, errors.NewNotFoundError("field", v.Name+"."+field)
	}
	if v.Records == 0 {
		return nil, f, nil
	}
	need := int64(v.Records) * int64(v.RecordSize)
	if v.dataLength < need {
		return nil, f, errors.NewParseError("hdf4", "", fmt.Sprintf("vdata %s holds %d bytes, %d records need %d", v.Name, v.dataLength, v.Records, need), io.ErrUnexpectedEOF)
	}

	data := make([]byte, need)
	if _, err := v.file.r.ReadAt(data, v.dataOffset); err != nil {
		return nil, f, errors.NewParseError("hdf4", "", "reading vdata "+v.Name, err)
	}

	width := f.Order * f.Type.Size()
	out := make([]byte, 0, v.Records*width)
	for rec := 0; rec < v.Records; rec++ {
		var start int
		if v.Interlace == NoInterlace {
			start = v.Records*f.Offset + rec*f.Size
		} else {
			start = rec*v.RecordSize + f.Offset
		}
		out = append(out, data[start:start+width]...)
	}
	return out, f, nil
}

// Values decodes the named field. Character fields are returned as a string
// with trailing NULs removed; a field holding one number is returned as a
// scalar; anything else is returned as a typed slice.
func (v *Vdata) Values(field string) (any, error) {
	raw, f, err := v.Raw(field)
	if err != nil {
		return nil, err
	}
	if f.Type == Char8 || f.Type == UChar8 {
		return strings.TrimRight(string(raw), "\x00"), nil
	}

	values := decode(raw, f)
	if v.Records*f.Order == 1 {
		return scalar(values), nil
	}
	return values, nil
}

// String decodes a character field.
func (v *Vdata) String(field string) (string, error) {
	raw, f, err := v.Raw(field)
	if err != nil {
		return "", err
	}
	if f.Type != Char8 && f.Type != UChar8 {
		return "", fmt.Errorf("field %s.%s is %s, not character data: %w", v.Name, field, f.Type, errors.ErrInvalidInput)
	}
	return strings.TrimRight(string(raw), "\x00"), nil
}

// Float64s decodes a numeric field, converting every value to float64.
func (v *Vdata) Float64s(field string) ([]float64, error) {
	raw, f, err := v.Raw(field)
	if err != nil {
		return nil, err
	}
	if f.Type == Char8 || f.Type == UChar8 {
		return nil, fmt.Errorf("field %s.%s is %s, not numeric: %w", v.Name, field, f.Type, errors.ErrInvalidInput)
	}

	size := f.Type.Size()
	order := byteOrder(f)
	out := make([]float64, len(raw)/size)
	for i := range out {
		b := raw[i*size : (i+1)*size]
		switch f.Type {
		case Float32:
			out[i] = float64(math.Float32frombits(order.Uint32(b)))
		case Float64:
			out[i] = math.Float64frombits(order.Uint64(b))
		case Int8:
			out[i] = float64(int8(b[0]))
		case UInt8:
			out[i] = float64(b[0])
		case Int16:
			out[i] = float64(int16(order.Uint16(b)))
		case UInt16:
			out[i] = float64(order.Uint16(b))
		case Int32:
			out[i] = float64(int32(order.Uint32(b)))
		case UInt32:
			out[i] = float64(order.Uint32(b))
		}
	}
	return out, nil
}

func byteOrder(f Field) binary.ByteOrder {
	if f.littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func decode(raw []byte, f Field) any {
	order := byteOrder(f)
	size := f.Type.Size()
	n := len(raw) / size

	switch f.Type {
	case Float32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(raw[i*4:]))
		}
		return out
	case Float64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
		}
		return out
	case Int8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(raw[i])
		}
		return out
	case UInt8:
		out := make([]uint8, n)
		copy(out, raw)
		return out
	case Int16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(order.Uint16(raw[i*2:]))
		}
		return out
	case UInt16:
		out := make([]uint16, n)
		for i := range out {
			out[i] = order.Uint16(raw[i*2:])
		}
		return out
	case Int32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(order.Uint32(raw[i*4:]))
		}
		return out
	case UInt32:
		out := make([]uint32, n)
		for i := range out {
			out[i] = order.Uint32(raw[i*4:])
		}
		return out
	}
	return nil
}

func scalar(values any) any {
	switch s := values.(type) {
	case []float32:
		return s[0]
	case []float64:
		return s[0]
	case []int8:
		return s[0]
	case []uint8:
		return s[0]
	case []int16:
		return s[0]
	case []uint16:
		return s[0]
	case []int32:
		return s[0]
	case []uint32:
		return s[0]
	}
	return values
}
