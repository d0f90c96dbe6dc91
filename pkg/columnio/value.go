package columnio

import (
	"bytes"
	"cmp"
	"fmt"
	"math"
	"strconv"

	"github.com/grafana/columnio/pkg/schema"
)

// Value is a single primitive value of a leaf column. The zero Value is
// absent (null).
type Value struct {
	kind schema.PhysicalType

	// num holds booleans, integers and the bits of floating point values.
	num uint64
	buf []byte
}

// BooleanValue returns a Value for a bool.
func BooleanValue(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: schema.Boolean, num: n}
}

// Int32Value returns a Value for an int32.
func Int32Value(v int32) Value {
	return Value{kind: schema.Int32, num: uint64(int64(v))}
}

// Int64Value returns a Value for an int64.
func Int64Value(v int64) Value {
	return Value{kind: schema.Int64, num: uint64(v)}
}

// FloatValue returns a Value for a float32.
func FloatValue(v float32) Value {
	return Value{kind: schema.Float, num: uint64(math.Float32bits(v))}
}

// DoubleValue returns a Value for a float64.
func DoubleValue(v float64) Value {
	return Value{kind: schema.Double, num: math.Float64bits(v)}
}

// ByteArrayValue returns a Value referencing b. The caller must not modify b
// afterwards.
func ByteArrayValue(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: schema.ByteArray, buf: b}
}

// StringValue returns a byte array Value holding s.
func StringValue(s string) Value {
	return ByteArrayValue([]byte(s))
}

// IsNull reports whether v is absent.
func (v Value) IsNull() bool { return v.kind == 0 }

// Kind returns the physical type of v, 0 when v is absent.
func (v Value) Kind() schema.PhysicalType { return v.kind }

func (v Value) mustBe(k schema.PhysicalType) {
	if v.kind != k {
		panic(fmt.Sprintf("columnio.Value kind is %s, not %s", v.kind, k))
	}
}

// Boolean returns v as a bool. It panics if v is not a boolean.
func (v Value) Boolean() bool {
	v.mustBe(schema.Boolean)
	return v.num != 0
}

// Int32 returns v as an int32. It panics if v is not an int32.
func (v Value) Int32() int32 {
	v.mustBe(schema.Int32)
	return int32(v.num)
}

// Int64 returns v as an int64. It panics if v is not an int64.
func (v Value) Int64() int64 {
	v.mustBe(schema.Int64)
	return int64(v.num)
}

// Float returns v as a float32. It panics if v is not a float.
func (v Value) Float() float32 {
	v.mustBe(schema.Float)
	return math.Float32frombits(uint32(v.num))
}

// Double returns v as a float64. It panics if v is not a double.
func (v Value) Double() float64 {
	v.mustBe(schema.Double)
	return math.Float64frombits(v.num)
}

// ByteArray returns v as a byte slice. It panics if v is not a byte array.
func (v Value) ByteArray() []byte {
	v.mustBe(schema.ByteArray)
	return v.buf
}

// Clone returns a copy of v that does not share memory with it.
func (v Value) Clone() Value {
	if v.buf != nil {
		v.buf = bytes.Clone(v.buf)
	}
	return v
}

// Equal reports whether v and o have the same kind and value. Floating
// point values are compared by bits.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == schema.ByteArray {
		return bytes.Equal(v.buf, o.buf)
	}
	return v.num == o.num
}

// CompareValues orders two values of the same kind. Absent values sort
// first. Values of different kinds are ordered by kind.
func CompareValues(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}

	switch a.kind {
	case 0:
		return 0
	case schema.Boolean:
		return cmp.Compare(a.num, b.num)
	case schema.Int32:
		return cmp.Compare(a.Int32(), b.Int32())
	case schema.Int64:
		return cmp.Compare(a.Int64(), b.Int64())
	case schema.Float:
		return cmp.Compare(a.Float(), b.Float())
	case schema.Double:
		return cmp.Compare(a.Double(), b.Double())
	case schema.ByteArray:
		return bytes.Compare(a.buf, b.buf)
	default:
		panic(fmt.Sprintf("columnio.Value has unexpected kind %d", a.kind))
	}
}

func (v Value) String() string {
	switch v.kind {
	case 0:
		return "null"
	case schema.Boolean:
		return strconv.FormatBool(v.Boolean())
	case schema.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case schema.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case schema.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case schema.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case schema.ByteArray:
		return strconv.Quote(string(v.buf))
	default:
		return "invalid"
	}
}

// Triple is one entry of a leaf column: a value (or absence) annotated with
// its repetition and definition levels.
type Triple struct {
	Value           Value
	RepetitionLevel int
	DefinitionLevel int
}

// Null returns an absent triple at the given levels.
func Null(repetitionLevel, definitionLevel int) Triple {
	return Triple{RepetitionLevel: repetitionLevel, DefinitionLevel: definitionLevel}
}

func (t Triple) String() string {
	return fmt.Sprintf("(%s, r=%d, d=%d)", t.Value, t.RepetitionLevel, t.DefinitionLevel)
}
