package columnstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/schema"
)

const (
	uint32Size = 4
	uint16Size = 2

	// page header: triple count
	pageHeaderLength = uint32Size
)

/*
  |                 -- totalLength --                          |
  |             |            | -- headerLength -- |            |
  |   32 bits   |   16 bits  |      32 bits       |            |
  | totalLength | header len | triple count       | page bytes |
*/
type page struct {
	triples uint32
	data    []byte
}

// pageLength returns the framed length of a page holding dataLength bytes.
func pageLength(dataLength int) (uint32, error) {
	const overhead = uint32Size + uint16Size + pageHeaderLength
	if uint64(dataLength) > math.MaxUint32-overhead {
		return 0, fmt.Errorf("page of %d bytes exceeds the maximum page size", dataLength)
	}
	return uint32(overhead + dataLength), nil
}

func marshalPageToWriter(p page, w io.Writer) (int, error) {
	totalLength, err := pageLength(len(p.data))
	if err != nil {
		return 0, err
	}

	if err := binary.Write(w, binary.LittleEndian, totalLength); err != nil {
		return 0, err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(pageHeaderLength)); err != nil {
		return 0, err
	}
	if err := binary.Write(w, binary.LittleEndian, p.triples); err != nil {
		return 0, err
	}
	if _, err := w.Write(p.data); err != nil {
		return 0, err
	}
	return int(totalLength), nil
}

func unmarshalPageFromReader(r io.Reader) (page, int, error) {
	var totalLength uint32
	if err := binary.Read(r, binary.LittleEndian, &totalLength); err != nil {
		return page{}, 0, err
	}
	if totalLength < uint32Size+uint16Size+pageHeaderLength {
		return page{}, 0, fmt.Errorf("page of size %d too small", totalLength)
	}

	var headerLength uint16
	if err := binary.Read(r, binary.LittleEndian, &headerLength); err != nil {
		return page{}, 0, err
	}
	if headerLength != pageHeaderLength {
		return page{}, 0, fmt.Errorf("headerLen unexpectedly %d while reading a page", headerLength)
	}

	var p page
	if err := binary.Read(r, binary.LittleEndian, &p.triples); err != nil {
		return page{}, 0, err
	}

	// the buffer grows with the bytes actually read, never with the declared length
	dataLength := int64(totalLength - uint32Size - uint16Size - pageHeaderLength)
	var data bytes.Buffer
	if _, err := io.CopyN(&data, r, dataLength); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return page{}, 0, err
	}
	p.data = data.Bytes()
	return p, int(totalLength), nil
}

// appendTriple encodes a triple as levels as uvarints, a kind byte (0 for
// absent) and the value.
func appendTriple(b []byte, t columnio.Triple) []byte {
	b = binary.AppendUvarint(b, uint64(t.RepetitionLevel))
	b = binary.AppendUvarint(b, uint64(t.DefinitionLevel))
	return appendValue(b, t.Value)
}

func appendValue(b []byte, v columnio.Value) []byte {
	b = append(b, byte(v.Kind()))

	switch v.Kind() {
	case 0:
	case schema.Boolean:
		if v.Boolean() {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	case schema.Int32:
		b = binary.AppendVarint(b, int64(v.Int32()))
	case schema.Int64:
		b = binary.AppendVarint(b, v.Int64())
	case schema.Float:
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.Float()))
	case schema.Double:
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v.Double()))
	case schema.ByteArray:
		b = binary.AppendUvarint(b, uint64(len(v.ByteArray())))
		b = append(b, v.ByteArray()...)
	default:
		panic(fmt.Sprintf("columnstore: value of unexpected kind %d", v.Kind()))
	}
	return b
}

// pageDecoder reads the triples appended by appendTriple.
type pageDecoder struct {
	b   []byte
	off int
}

func (d *pageDecoder) uvarint() (uint64, error) {
	v, n := binary.Uvarint(d.b[d.off:])
	if n <= 0 {
		return 0, fmt.Errorf("bad uvarint at offset %d", d.off)
	}
	d.off += n
	return v, nil
}

func (d *pageDecoder) varint() (int64, error) {
	v, n := binary.Varint(d.b[d.off:])
	if n <= 0 {
		return 0, fmt.Errorf("bad varint at offset %d", d.off)
	}
	d.off += n
	return v, nil
}

func (d *pageDecoder) bytes(n int) ([]byte, error) {
	if n < 0 || len(d.b)-d.off < n {
		return nil, fmt.Errorf("page truncated at offset %d", d.off)
	}
	b := d.b[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *pageDecoder) triple() (columnio.Triple, error) {
	r, err := d.uvarint()
	if err != nil {
		return columnio.Triple{}, err
	}
	def, err := d.uvarint()
	if err != nil {
		return columnio.Triple{}, err
	}
	if r > math.MaxInt32 || def > math.MaxInt32 {
		return columnio.Triple{}, fmt.Errorf("level out of range at offset %d", d.off)
	}
	v, err := d.value()
	if err != nil {
		return columnio.Triple{}, err
	}
	return columnio.Triple{Value: v, RepetitionLevel: int(r), DefinitionLevel: int(def)}, nil
}

func (d *pageDecoder) value() (columnio.Value, error) {
	kind, err := d.bytes(1)
	if err != nil {
		return columnio.Value{}, err
	}

	switch schema.PhysicalType(kind[0]) {
	case 0:
		return columnio.Value{}, nil
	case schema.Boolean:
		b, err := d.bytes(1)
		if err != nil {
			return columnio.Value{}, err
		}
		return columnio.BooleanValue(b[0] != 0), nil
	case schema.Int32:
		i, err := d.varint()
		if err != nil {
			return columnio.Value{}, err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return columnio.Value{}, fmt.Errorf("int32 out of range at offset %d", d.off)
		}
		return columnio.Int32Value(int32(i)), nil
	case schema.Int64:
		i, err := d.varint()
		if err != nil {
			return columnio.Value{}, err
		}
		return columnio.Int64Value(i), nil
	case schema.Float:
		b, err := d.bytes(4)
		if err != nil {
			return columnio.Value{}, err
		}
		return columnio.FloatValue(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case schema.Double:
		b, err := d.bytes(8)
		if err != nil {
			return columnio.Value{}, err
		}
		return columnio.DoubleValue(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
	case schema.ByteArray:
		n, err := d.uvarint()
		if err != nil {
			return columnio.Value{}, err
		}
		if n > math.MaxInt32 {
			return columnio.Value{}, fmt.Errorf("byte array length %d out of range", n)
		}
		b, err := d.bytes(int(n))
		if err != nil {
			return columnio.Value{}, err
		}
		return columnio.ByteArrayValue(b), nil
	default:
		return columnio.Value{}, fmt.Errorf("unknown value kind %d at offset %d", kind[0], d.off-1)
	}
}
