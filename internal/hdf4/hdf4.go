// Package hdf4 reads vdata tables and vdata-backed attributes from HDF4 files.
//
// Only the parts of the format needed to extract granule metadata are
// supported: the data descriptor blocks, vdata headers (VH) and vdata
// storage (VS). Scientific data sets, raster images and compressed special
// elements are skipped. HDF-EOS attributes, stored as vdatas of class
// "Attr0.0" with a single VALUES field, are exposed through Attribute.
package hdf4

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/agentstation/wxdata/pkg/errors"
)

// Magic is the signature at the start of every HDF4 file.
var Magic = [4]byte{0x0e, 0x03, 0x13, 0x01}

// Tags used by the reader.
const (
	TagNull uint16 = 1
	TagVH   uint16 = 1962
	TagVS   uint16 = 1963
)

// AttributeClass is the vdata class HDF-EOS uses for attributes.
const AttributeClass = "Attr0.0"

// AttributeField is the field holding an attribute's value.
const AttributeField = "VALUES"

const (
	ddBlockHeaderSize = 6
	ddSize            = 12
	maxDDBlocks       = 1 << 16
)

type dd struct {
	tag    uint16
	ref    uint16
	offset uint32
	length uint32
}

// File is an open HDF4 file.
type File struct {
	r      io.ReaderAt
	size   int64
	closer io.Closer

	vdatas []*Vdata
	byName map[string]*Vdata
}

// Open opens the HDF4 file at path.
func Open(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, errors.WrapIO("stat", path, err)
	}
	f, err := NewFile(fh, info.Size())
	if err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.closer = fh
	return f, nil
}

// NewFile reads the structure of an HDF4 file from r.
func NewFile(r io.ReaderAt, size int64) (*File, error) {
	var magic [4]byte
	if _, err := r.ReadAt(magic[:], 0); err != nil {
		return nil, errors.NewParseError("hdf4", "", "reading signature", err)
	}
	if magic != Magic {
		return nil, errors.NewParseError("hdf4", "", "not an HDF4 file", errors.ErrUnsupported)
	}

	f := &File{r: r, size: size, byName: make(map[string]*Vdata)}
	dds, err := f.readDDs()
	if err != nil {
		return nil, err
	}

	storage := make(map[uint16]dd)
	for _, d := range dds {
		if d.tag == TagVS {
			storage[d.ref] = d
		}
	}
	for _, d := range dds {
		if d.tag != TagVH {
			continue
		}
		vd, err := f.readVdataHeader(d)
		if err != nil {
			return nil, err
		}
		if s, ok := storage[d.ref]; ok {
			vd.dataOffset = int64(s.offset)
			vd.dataLength = int64(s.length)
		}
		f.vdatas = append(f.vdatas, vd)
		if _, dup := f.byName[vd.Name]; !dup {
			f.byName[vd.Name] = vd
		}
	}
	return f, nil
}

// Close closes the underlying file when the File was created by Open.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	return err
}

// Vdatas returns every vdata in the file in descriptor order.
func (f *File) Vdatas() []*Vdata {
	return f.vdatas
}

// Vdata returns the first vdata named name.
func (f *File) Vdata(name string) (*Vdata, error) {
	vd, ok := f.byName[name]
	if !ok {
		return nil, errors.NewNotFoundError("vdata", name)
	}
	return vd, nil
}

// Attribute returns the value of the named attribute: a string for
// character data, a scalar for single numeric values and a slice otherwise.
func (f *File) Attribute(name string) (any, error) {
	vd, ok := f.byName[name]
	if !ok || vd.Class != AttributeClass {
		return nil, errors.NewNotFoundError("attribute", name)
	}
	return vd.Values(AttributeField)
}

// AttributeNames returns the sorted names of all attributes in the file.
func (f *File) AttributeNames() []string {
	var names []string
	for _, vd := range f.vdatas {
		if vd.Class == AttributeClass {
			names = append(names, vd.Name)
		}
	}
	sort.Strings(names)
	return names
}

// VdataNames returns the sorted names of all non-attribute vdatas.
func (f *File) VdataNames() []string {
	var names []string
	for _, vd := range f.vdatas {
		if vd.Class != AttributeClass && vd.Name != "" {
			names = append(names, vd.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (f *File) readDDs() ([]dd, error) {
	var (
		dds     []dd
		offset  = int64(len(Magic))
		visited = make(map[int64]bool)
	)
	for offset != 0 {
		if visited[offset] || len(visited) > maxDDBlocks {
			return nil, errors.NewParseError("hdf4", "", "descriptor block chain loops", nil)
		}
		visited[offset] = true

		var hdr [ddBlockHeaderSize]byte
		if _, err := f.r.ReadAt(hdr[:], offset); err != nil {
			return nil, errors.NewParseError("hdf4", "", fmt.Sprintf("reading descriptor block at %d", offset), err)
		}
		n := int(binary.BigEndian.Uint16(hdr[0:2]))
		next := int64(binary.BigEndian.Uint32(hdr[2:6]))

		buf := make([]byte, n*ddSize)
		if _, err := f.r.ReadAt(buf, offset+ddBlockHeaderSize); err != nil {
			return nil, errors.NewParseError("hdf4", "", fmt.Sprintf("reading %d descriptors at %d", n, offset), err)
		}
		for i := 0; i < n; i++ {
			b := buf[i*ddSize:]
			d := dd{
				tag:    binary.BigEndian.Uint16(b[0:2]),
				ref:    binary.BigEndian.Uint16(b[2:4]),
				offset: binary.BigEndian.Uint32(b[4:8]),
				length: binary.BigEndian.Uint32(b[8:12]),
			}
			if d.tag == TagNull {
				continue
			}
			if int64(d.offset)+int64(d.length) > f.size {
				return nil, errors.NewParseError("hdf4", "", fmt.Sprintf("element %d/%d extends past end of file", d.tag, d.ref), nil)
			}
			dds = append(dds, d)
		}
		offset = next
	}
	return dds, nil
}

func (f *File) readVdataHeader(d dd) (*Vdata, error) {
	buf := make([]byte, d.length)
	if _, err := f.r.ReadAt(buf, int64(d.offset)); err != nil {
		return nil, errors.NewParseError("hdf4", "", fmt.Sprintf("reading vdata header %d", d.ref), err)
	}
	vd, err := parseVdataHeader(buf)
	if err != nil {
		return nil, errors.NewParseError("hdf4", "", fmt.Sprintf("vdata header %d", d.ref), err)
	}
	vd.file = f
	vd.Ref = d.ref
	return vd, nil
}

// headerReader decodes the big-endian fields of a vdata header.
type headerReader struct {
	buf []byte
	pos int
	err error
}

func (h *headerReader) next(n int) []byte {
	if h.err != nil {
		return make([]byte, n)
	}
	if h.pos+n > len(h.buf) {
		h.err = io.ErrUnexpectedEOF
		return make([]byte, n)
	}
	b := h.buf[h.pos : h.pos+n]
	h.pos += n
	return b
}

func (h *headerReader) uint16() uint16 { return binary.BigEndian.Uint16(h.next(2)) }
func (h *headerReader) int32() int32   { return int32(binary.BigEndian.Uint32(h.next(4))) }

func (h *headerReader) string() string {
	n := int(h.uint16())
	return strings.TrimRight(string(h.next(n)), "\x00")
}

func parseVdataHeader(buf []byte) (*Vdata, error) {
	h := &headerReader{buf: buf}

	vd := &Vdata{}
	vd.Interlace = Interlace(int16(h.uint16()))
	vd.Records = int(h.int32())
	vd.RecordSize = int(h.uint16())
	nfields := int(int16(h.uint16()))
	if h.err != nil {
		return nil, h.err
	}
	if nfields < 0 || vd.Records < 0 {
		return nil, fmt.Errorf("negative field or record count")
	}

	vd.Fields = make([]Field, nfields)
	for i := range vd.Fields {
		vd.Fields[i].rawType = h.uint16()
	}
	for i := range vd.Fields {
		vd.Fields[i].Size = int(h.uint16())
	}
	for i := range vd.Fields {
		vd.Fields[i].Offset = int(h.uint16())
	}
	for i := range vd.Fields {
		vd.Fields[i].Order = int(h.uint16())
	}
	for i := range vd.Fields {
		vd.Fields[i].Name = h.string()
	}
	vd.Name = h.string()
	vd.Class = h.string()
	if h.err != nil {
		return nil, h.err
	}

	for i := range vd.Fields {
		fd := &vd.Fields[i]
		fd.Type = DataType(fd.rawType &^ (nativeFlag | litEndFlag))
		fd.littleEndian = fd.rawType&litEndFlag != 0
		if fd.Type.Size() == 0 {
			return nil, fmt.Errorf("field %s: %w: data type %d", fd.Name, errors.ErrUnsupported, fd.rawType)
		}
		if fd.Order*fd.Type.Size() > fd.Size {
			return nil, fmt.Errorf("field %s: order %d does not fit in %d bytes", fd.Name, fd.Order, fd.Size)
		}
		if fd.Offset+fd.Size > vd.RecordSize {
			return nil, fmt.Errorf("field %s extends past record size %d", fd.Name, vd.RecordSize)
		}
	}
	return vd, nil
}
