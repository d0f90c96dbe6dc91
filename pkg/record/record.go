// Package record holds nested record values: ordered groups of named
// fields whose values are nil, *Group, []any lists or primitives.
//
// Primitive values are bool, int32, int64, float32, float64, []byte and
// string. The shredder additionally accepts the other Go integer types as
// long as they fit the column.
package record

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
)

// Group is an ordered set of named field values. A field can be absent
// (never set), set to nil (null) or set to a value.
type Group struct {
	names  []string
	values map[string]any
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{values: map[string]any{}}
}

// Set sets a field, keeping its original position if it already exists.
// It returns g to allow chaining.
func (g *Group) Set(name string, v any) *Group {
	if g.values == nil {
		g.values = map[string]any{}
	}
	if _, ok := g.values[name]; !ok {
		g.names = append(g.names, name)
	}
	g.values[name] = v
	return g
}

// Get returns the value of a field and whether it is present. A field set to
// nil is present with a nil value.
func (g *Group) Get(name string) (any, bool) {
	v, ok := g.values[name]
	return v, ok
}

// Has reports whether the field is present.
func (g *Group) Has(name string) bool {
	_, ok := g.values[name]
	return ok
}

// Delete removes a field.
func (g *Group) Delete(name string) {
	if _, ok := g.values[name]; !ok {
		return
	}
	delete(g.values, name)
	for i, n := range g.names {
		if n == name {
			g.names = append(g.names[:i], g.names[i+1:]...)
			break
		}
	}
}

// Names returns the present field names in insertion order. The slice must
// not be modified.
func (g *Group) Names() []string { return g.names }

// Len is the number of present fields.
func (g *Group) Len() int { return len(g.names) }

// List is a convenience to build list values.
func List(values ...any) []any {
	if values == nil {
		return []any{}
	}
	return values
}

func (g *Group) String() string {
	var sb strings.Builder
	writeGroup(&sb, g)
	return sb.String()
}

func writeGroup(sb *strings.Builder, g *Group) {
	sb.WriteByte('{')
	for i, n := range g.names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(n)
		sb.WriteString(": ")
		writeValue(sb, g.values[n])
	}
	sb.WriteByte('}')
}

func writeValue(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case nil:
		sb.WriteString("null")
	case *Group:
		writeGroup(sb, v)
	case []any:
		sb.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, e)
		}
		sb.WriteByte(']')
	case []byte:
		fmt.Fprintf(sb, "%q", v)
	case string:
		fmt.Fprintf(sb, "%q", v)
	default:
		fmt.Fprint(sb, v)
	}
}

// Equal compares two records the way the level encoding sees them: an
// absent field, a field set to nil and an empty list are equivalent, since
// all three shred to the same triples. A present group is never equal to an
// absent one.
func Equal(a, b *Group) bool {
	if a == nil || b == nil {
		return a == b
	}
	for _, n := range a.names {
		if !valueEqual(a.values[n], b.values[n]) {
			return false
		}
	}
	for _, n := range b.names {
		if _, ok := a.values[n]; !ok && !valueEqual(nil, b.values[n]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if isEmpty(a) && isEmpty(b) {
		return true
	}

	switch av := a.(type) {
	case *Group:
		bv, ok := b.(*Group)
		return ok && Equal(av, bv)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case []byte:
		switch bv := b.(type) {
		case []byte:
			return bytes.Equal(av, bv)
		case string:
			return string(av) == bv
		}
		return false
	case string:
		switch bv := b.(type) {
		case []byte:
			return av == string(bv)
		case string:
			return av == bv
		}
		return false
	default:
		return reflect.DeepEqual(a, b)
	}
}

func isEmpty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	}
	return false
}
