// Package schema declares nested record schemas: groups and primitive
// fields, each carrying a repetition marker. A Message is the root of a
// schema and is what columnio.NewTree consumes.
package schema

import (
	"fmt"
	"strings"
)

// Repetition is the repetition marker of a field.
type Repetition int8

const (
	Required Repetition = iota
	Optional
	Repeated
)

func (r Repetition) String() string {
	switch r {
	case Required:
		return "required"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the known markers.
func (r Repetition) Valid() bool {
	return r == Required || r == Optional || r == Repeated
}

// ParseRepetition parses a repetition marker by its name.
func ParseRepetition(s string) (Repetition, error) {
	for _, r := range []Repetition{Required, Optional, Repeated} {
		if strings.EqualFold(r.String(), s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("invalid repetition: %s", s)
}

// PhysicalType is the storage type of a primitive field.
type PhysicalType int8

const (
	Boolean PhysicalType = iota + 1
	Int32
	Int64
	Float
	Double
	ByteArray
)

// SupportedTypes lists all physical types in declaration order.
var SupportedTypes = []PhysicalType{
	Boolean,
	Int32,
	Int64,
	Float,
	Double,
	ByteArray,
}

func (t PhysicalType) String() string {
	switch t {
	case Boolean:
		return "boolean"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float:
		return "float"
	case Double:
		return "double"
	case ByteArray:
		return "binary"
	default:
		return "unsupported"
	}
}

// Valid reports whether t is a supported physical type.
func (t PhysicalType) Valid() bool {
	return t >= Boolean && t <= ByteArray
}

// ParsePhysicalType parses a physical type by name. "bytes" and
// "byte_array" are accepted as aliases of binary.
func ParsePhysicalType(s string) (PhysicalType, error) {
	switch strings.ToLower(s) {
	case "bytes", "byte_array":
		return ByteArray, nil
	}
	for _, t := range SupportedTypes {
		if strings.EqualFold(t.String(), s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("invalid physical type: %s", s)
}

// Annotation refines how a primitive is interpreted. It does not change the
// physical representation.
type Annotation int8

const (
	NoAnnotation Annotation = iota
	String
)

func (a Annotation) String() string {
	switch a {
	case String:
		return "UTF8"
	default:
		return ""
	}
}

// ParseAnnotation parses an annotation name, "" meaning none.
func ParseAnnotation(s string) (Annotation, error) {
	switch strings.ToUpper(s) {
	case "":
		return NoAnnotation, nil
	case "UTF8", "STRING":
		return String, nil
	}
	return 0, fmt.Errorf("invalid annotation: %s", s)
}

// Field is a node of a schema declaration. Groups hold child fields,
// primitives hold a physical type.
type Field struct {
	Name       string
	Repetition Repetition
	IsGroup    bool

	// primitive fields only
	Type       PhysicalType
	Annotation Annotation

	// group fields only
	Fields []*Field
}

// Message is the root of a schema declaration.
type Message struct {
	Name   string
	Fields []*Field
}

// NewMessage returns a message declaration with the given top-level fields.
func NewMessage(name string, fields ...*Field) *Message {
	return &Message{Name: name, Fields: fields}
}

// Group declares a group field.
func Group(name string, rep Repetition, fields ...*Field) *Field {
	return &Field{
		Name:       name,
		Repetition: rep,
		IsGroup:    true,
		Fields:     fields,
	}
}

// Primitive declares a primitive field.
func Primitive(name string, rep Repetition, typ PhysicalType) *Field {
	return &Field{
		Name:       name,
		Repetition: rep,
		Type:       typ,
	}
}

// Text declares a UTF8 annotated binary field.
func Text(name string, rep Repetition) *Field {
	f := Primitive(name, rep, ByteArray)
	f.Annotation = String
	return f
}

// String renders the message in the same text form Parse accepts.
func (m *Message) String() string {
	var sb strings.Builder
	sb.WriteString("message ")
	sb.WriteString(m.Name)
	sb.WriteString(" {\n")
	for _, f := range m.Fields {
		writeField(&sb, f, 1)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func writeField(sb *strings.Builder, f *Field, depth int) {
	indent := strings.Repeat("  ", depth)
	sb.WriteString(indent)
	sb.WriteString(f.Repetition.String())
	sb.WriteByte(' ')

	if f.IsGroup {
		sb.WriteString("group ")
		sb.WriteString(f.Name)
		sb.WriteString(" {\n")
		for _, c := range f.Fields {
			writeField(sb, c, depth+1)
		}
		sb.WriteString(indent)
		sb.WriteString("}\n")
		return
	}

	sb.WriteString(f.Type.String())
	sb.WriteByte(' ')
	sb.WriteString(f.Name)
	if a := f.Annotation.String(); a != "" {
		sb.WriteString(" (")
		sb.WriteString(a)
		sb.WriteByte(')')
	}
	sb.WriteString(";\n")
}
