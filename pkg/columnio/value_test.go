package columnio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/columnio/pkg/schema"
)

func TestValueAccessors(t *testing.T) {
	assert.True(t, BooleanValue(true).Boolean())
	assert.Equal(t, int32(math.MinInt32), Int32Value(math.MinInt32).Int32())
	assert.Equal(t, int64(math.MaxInt64), Int64Value(math.MaxInt64).Int64())
	assert.Equal(t, float32(1.25), FloatValue(1.25).Float())
	assert.Equal(t, -0.5, DoubleValue(-0.5).Double())
	assert.Equal(t, []byte("abc"), StringValue("abc").ByteArray())
	assert.Equal(t, []byte{}, ByteArrayValue(nil).ByteArray())

	var null Value
	assert.True(t, null.IsNull())
	assert.Equal(t, schema.PhysicalType(0), null.Kind())
	assert.False(t, ByteArrayValue(nil).IsNull())

	assert.Panics(t, func() { Int32Value(1).Int64() })
	assert.Panics(t, func() { null.Boolean() })
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Int32Value(1).Equal(Int32Value(1)))
	assert.False(t, Int32Value(1).Equal(Int64Value(1)))
	assert.True(t, StringValue("a").Equal(ByteArrayValue([]byte("a"))))
	assert.True(t, ByteArrayValue(nil).Equal(ByteArrayValue([]byte{})))
	assert.False(t, ByteArrayValue(nil).Equal(Value{}))
	assert.True(t, DoubleValue(math.NaN()).Equal(DoubleValue(math.NaN())))
	assert.False(t, DoubleValue(0).Equal(DoubleValue(math.Copysign(0, -1))))
}

func TestValueClone(t *testing.T) {
	buf := []byte("abc")
	v := ByteArrayValue(buf)
	c := v.Clone()
	buf[0] = 'x'

	assert.Equal(t, []byte("abc"), c.ByteArray())
	assert.Equal(t, []byte("xbc"), v.ByteArray())
	assert.True(t, Int64Value(3).Clone().Equal(Int64Value(3)))
}

func TestCompareValues(t *testing.T) {
	tcs := []struct {
		a, b     Value
		expected int
	}{
		{Value{}, Value{}, 0},
		{Value{}, BooleanValue(false), -1},
		{BooleanValue(false), BooleanValue(true), -1},
		{Int32Value(-1), Int32Value(1), -1},
		{Int64Value(math.MinInt64), Int64Value(0), -1},
		{FloatValue(2), FloatValue(1), 1},
		{DoubleValue(-1), DoubleValue(-1), 0},
		{StringValue("ab"), StringValue("b"), -1},
		{StringValue("ab"), StringValue("a"), 1},
		{Int32Value(100), Int64Value(1), -1},
	}
	for _, tc := range tcs {
		require.Equal(t, tc.expected, CompareValues(tc.a, tc.b), "%s <=> %s", tc.a, tc.b)
		require.Equal(t, -tc.expected, CompareValues(tc.b, tc.a), "%s <=> %s", tc.b, tc.a)
	}
}

func TestTripleString(t *testing.T) {
	assert.Equal(t, `("us", r=0, d=3)`, Triple{Value: StringValue("us"), DefinitionLevel: 3}.String())
	assert.Equal(t, "(null, r=2, d=2)", Null(2, 2).String())
	assert.Equal(t, "(1.5, r=0, d=0)", Triple{Value: DoubleValue(1.5)}.String())
}

func TestErrors(t *testing.T) {
	tree := mustTree(t, documentSchema)

	assert.Equal(t, "invalid schema: schema has no fields", (&SchemaError{Reason: "schema has no fields"}).Error())
	assert.Equal(t, "invalid schema at g.a: duplicate field name", (&SchemaError{Path: []string{"g", "a"}, Reason: "duplicate field name"}).Error())
	assert.Equal(t, "no repeated ancestor at repetition level 1 for DocId",
		(&InvalidPathError{Path: tree.Path(mustLeaf(t, tree, "DocId")), RepetitionLevel: 1}).Error())
	assert.Equal(t, "record does not match schema at id: missing", (&RecordShapeError{Path: []string{"id"}, Reason: "missing"}).Error())
	assert.Equal(t, "corrupt column a.b at record 3: bad", (&CorruptColumnError{Column: "a.b", Record: 3, Reason: "bad"}).Error())
}
