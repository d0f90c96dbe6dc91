package columnio

import (
	"strings"

	"github.com/grafana/columnio/pkg/schema"
)

// LogicalPath is the position of a node in the schema: the field names from
// the root (excluded) down to the node, and the maximum repetition and
// definition levels a value at that position can carry.
//
// RepetitionLevel counts the repeated fields on the path. DefinitionLevel
// counts the optional and repeated fields on the path, so it is never smaller
// than RepetitionLevel.
type LogicalPath struct {
	names           []string
	repetitionLevel int
	definitionLevel int
}

// Names returns the field names of the path. The slice must not be modified.
func (p LogicalPath) Names() []string { return p.names }

// Len is the number of fields on the path. The root has length 0.
func (p LogicalPath) Len() int { return len(p.names) }

func (p LogicalPath) RepetitionLevel() int { return p.repetitionLevel }

func (p LogicalPath) DefinitionLevel() int { return p.definitionLevel }

// pathSeparator joins names in String and in Tree.LeafByPath lookups. Trees
// reject field names containing it.
const pathSeparator = "."

// String joins the names with pathSeparator.
func (p LogicalPath) String() string {
	if len(p.names) == 0 {
		return "<root>"
	}
	return strings.Join(p.names, pathSeparator)
}

// Equal reports whether both paths name the same fields.
func (p LogicalPath) Equal(o LogicalPath) bool {
	if len(p.names) != len(o.names) {
		return false
	}
	for i := range p.names {
		if p.names[i] != o.names[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix names an ancestor of (or the same node
// as) p.
func (p LogicalPath) HasPrefix(prefix LogicalPath) bool {
	if len(prefix.names) > len(p.names) {
		return false
	}
	for i := range prefix.names {
		if p.names[i] != prefix.names[i] {
			return false
		}
	}
	return true
}

// child derives the path of a field declared under p.
func (p LogicalPath) child(name string, rep schema.Repetition) LogicalPath {
	c := LogicalPath{
		names:           append(p.names[:len(p.names):len(p.names)], name),
		repetitionLevel: p.repetitionLevel,
		definitionLevel: p.definitionLevel,
	}
	switch rep {
	case schema.Optional:
		c.definitionLevel++
	case schema.Repeated:
		c.repetitionLevel++
		c.definitionLevel++
	}
	return c
}
