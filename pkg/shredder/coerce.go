package shredder

import (
	"fmt"
	"math"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/schema"
)

// toValue converts a record primitive to a value of the column type. Go
// integers of any width are accepted for integer columns as long as they fit.
func toValue(typ schema.PhysicalType, v any) (columnio.Value, error) {
	switch typ {
	case schema.Boolean:
		if b, ok := v.(bool); ok {
			return columnio.BooleanValue(b), nil
		}

	case schema.Int32:
		if i, ok := asInt64(v); ok {
			if i < math.MinInt32 || i > math.MaxInt32 {
				return columnio.Value{}, fmt.Errorf("value %d overflows int32", i)
			}
			return columnio.Int32Value(int32(i)), nil
		}

	case schema.Int64:
		if i, ok := asInt64(v); ok {
			return columnio.Int64Value(i), nil
		}
		if u, ok := v.(uint64); ok {
			return columnio.Value{}, fmt.Errorf("value %d overflows int64", u)
		}
		if u, ok := v.(uint); ok {
			return columnio.Value{}, fmt.Errorf("value %d overflows int64", u)
		}

	case schema.Float:
		switch f := v.(type) {
		case float32:
			return columnio.FloatValue(f), nil
		case float64:
			if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
				return columnio.Value{}, fmt.Errorf("value %g overflows float", f)
			}
			return columnio.FloatValue(float32(f)), nil
		}

	case schema.Double:
		switch f := v.(type) {
		case float64:
			return columnio.DoubleValue(f), nil
		case float32:
			return columnio.DoubleValue(float64(f)), nil
		}

	case schema.ByteArray:
		switch b := v.(type) {
		case []byte:
			return columnio.ByteArrayValue(b), nil
		case string:
			return columnio.StringValue(b), nil
		}

	default:
		return columnio.Value{}, fmt.Errorf("unsupported column type %s", typ)
	}
	return columnio.Value{}, fmt.Errorf("expected %s, got %T", typ, v)
}

func asInt64(v any) (int64, bool) {
	switch i := v.(type) {
	case int:
		return int64(i), true
	case int8:
		return int64(i), true
	case int16:
		return int64(i), true
	case int32:
		return int64(i), true
	case int64:
		return i, true
	case uint8:
		return int64(i), true
	case uint16:
		return int64(i), true
	case uint32:
		return int64(i), true
	case uint:
		if uint64(i) > math.MaxInt64 {
			return 0, false
		}
		return int64(i), true
	case uint64:
		if i > math.MaxInt64 {
			return 0, false
		}
		return int64(i), true
	}
	return 0, false
}
