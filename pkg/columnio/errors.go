package columnio

import (
	"fmt"
	"strings"
)

// SchemaError is returned when a schema cannot be turned into a column tree.
type SchemaError struct {
	Path   []string
	Reason string
}

func (e *SchemaError) Error() string {
	if len(e.Path) == 0 {
		return "invalid schema: " + e.Reason
	}
	return fmt.Sprintf("invalid schema at %s: %s", strings.Join(e.Path, "."), e.Reason)
}

// InvalidPathError is returned by boundary queries asked for a repetition
// level the node cannot be enclosed by.
type InvalidPathError struct {
	Path            LogicalPath
	RepetitionLevel int
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("no repeated ancestor at repetition level %d for %s", e.RepetitionLevel, e.Path)
}

// RecordShapeError is returned when a record being shredded disagrees with
// the schema. The shredder stays usable after returning one.
type RecordShapeError struct {
	Path   []string
	Reason string
}

func (e *RecordShapeError) Error() string {
	if len(e.Path) == 0 {
		return "record does not match schema: " + e.Reason
	}
	return fmt.Sprintf("record does not match schema at %s: %s", strings.Join(e.Path, "."), e.Reason)
}

// CorruptColumnError is returned when leaf triple streams contradict the tree
// or each other. Record is the ordinal of the record the offending triple
// belongs to, as counted by its repetition levels.
type CorruptColumnError struct {
	Column string
	Record int64
	Reason string
}

func (e *CorruptColumnError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("corrupt columns at record %d: %s", e.Record, e.Reason)
	}
	return fmt.Sprintf("corrupt column %s at record %d: %s", e.Column, e.Record, e.Reason)
}
