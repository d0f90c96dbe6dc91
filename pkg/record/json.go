package record

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/schema"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// FromJSON decodes one JSON object into a record, using the tree to pick
// the Go type of every primitive. JSON null becomes an explicit nil, missing
// keys stay absent. Keys or values that do not fit the tree are decoded
// generically so the shredder can report them as shape errors.
//
// Binary columns take JSON strings; their bytes are the UTF-8 bytes of the
// string.
func FromJSON(t *columnio.Tree, data []byte) (*Group, error) {
	iter := jsonAPI.BorrowIterator(data)
	defer jsonAPI.ReturnIterator(iter)

	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return nil, errors.New("record must be a JSON object")
	}
	g := decodeGroup(iter, t, columnio.RootID)
	if iter.Error != nil {
		return nil, errors.Wrap(iter.Error, "decoding record")
	}
	return g, nil
}

func decodeGroup(iter *jsoniter.Iterator, t *columnio.Tree, id columnio.NodeID) *Group {
	children := map[string]columnio.NodeID{}
	for _, c := range t.Node(id).Children() {
		children[t.Node(c).Name()] = c
	}

	g := NewGroup()
	iter.ReadObjectCB(func(iter *jsoniter.Iterator, field string) bool {
		c, ok := children[field]
		if !ok {
			g.Set(field, iter.Read())
			return true
		}
		g.Set(field, decodeField(iter, t, c))
		return true
	})
	return g
}

func decodeField(iter *jsoniter.Iterator, t *columnio.Tree, id columnio.NodeID) any {
	if !t.Node(id).IsRepeated() || iter.WhatIsNext() != jsoniter.ArrayValue {
		return decodeSingle(iter, t, id)
	}

	list := []any{}
	iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
		list = append(list, decodeSingle(iter, t, id))
		return true
	})
	return list
}

func decodeSingle(iter *jsoniter.Iterator, t *columnio.Tree, id columnio.NodeID) any {
	next := iter.WhatIsNext()
	if next == jsoniter.NilValue {
		iter.ReadNil()
		return nil
	}

	n := t.Node(id)
	if n.Kind() == columnio.GroupKind {
		if next != jsoniter.ObjectValue {
			return iter.Read()
		}
		return decodeGroup(iter, t, id)
	}

	switch n.Type() {
	case schema.Boolean:
		if next == jsoniter.BoolValue {
			return iter.ReadBool()
		}
	case schema.Int32:
		if next == jsoniter.NumberValue {
			return iter.ReadInt32()
		}
	case schema.Int64:
		if next == jsoniter.NumberValue {
			return iter.ReadInt64()
		}
	case schema.Float:
		if next == jsoniter.NumberValue {
			return iter.ReadFloat32()
		}
	case schema.Double:
		if next == jsoniter.NumberValue {
			return iter.ReadFloat64()
		}
	case schema.ByteArray:
		if next == jsoniter.StringValue {
			s := iter.ReadString()
			if n.Annotation() == schema.String {
				return s
			}
			return []byte(s)
		}
	}
	return iter.Read()
}

// ToJSON encodes a record as a JSON object. Fields keep their order, []byte
// values are written as strings.
func ToJSON(g *Group) ([]byte, error) {
	stream := jsonAPI.BorrowStream(nil)
	defer jsonAPI.ReturnStream(stream)

	if err := encodeGroup(stream, g); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, errors.Wrap(stream.Error, "encoding record")
	}

	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

func encodeGroup(stream *jsoniter.Stream, g *Group) error {
	stream.WriteObjectStart()
	for i, name := range g.Names() {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(name)
		v, _ := g.Get(name)
		if err := encodeValue(stream, v); err != nil {
			return err
		}
	}
	stream.WriteObjectEnd()
	return nil
}

func encodeValue(stream *jsoniter.Stream, v any) error {
	switch v := v.(type) {
	case nil:
		stream.WriteNil()
	case *Group:
		return encodeGroup(stream, v)
	case []any:
		stream.WriteArrayStart()
		for i, e := range v {
			if i > 0 {
				stream.WriteMore()
			}
			if err := encodeValue(stream, e); err != nil {
				return err
			}
		}
		stream.WriteArrayEnd()
	case bool:
		stream.WriteBool(v)
	case int32:
		stream.WriteInt32(v)
	case int64:
		stream.WriteInt64(v)
	case int:
		stream.WriteInt(v)
	case float32:
		stream.WriteFloat32(v)
	case float64:
		stream.WriteFloat64(v)
	case string:
		stream.WriteString(v)
	case []byte:
		stream.WriteString(string(v))
	default:
		return fmt.Errorf("unsupported record value of type %T", v)
	}
	return nil
}
