package assembler

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/schema"
)

// cursor holds one triple of lookahead on a leaf column. Triples are checked
// against the leaf's levels and type as they are read, so the assembler only
// has to check structure.
type cursor struct {
	leaf columnio.NodeID
	name string
	typ  schema.PhysicalType
	maxR int
	maxD int

	r    columnio.ColumnReader
	rn   columnio.RowNumber
	next columnio.Triple
	eof  bool

	// record of the triple consumed last
	consumed int64
}

func newCursor(tree *columnio.Tree, leaf columnio.NodeID, r columnio.ColumnReader) *cursor {
	n := tree.Node(leaf)
	return &cursor{
		leaf: leaf,
		name: n.Path().String(),
		typ:  n.Type(),
		maxR: n.Path().RepetitionLevel(),
		maxD: n.Path().DefinitionLevel(),
		r:    r,
		rn:   columnio.NewRowNumber(n.Path().DefinitionLevel()),
	}
}

func (c *cursor) advance() error {
	if c.rn.Valid() {
		c.consumed = c.rn.Record()
	}

	t, err := c.r.ReadTriple()
	if err == io.EOF {
		c.eof = true
		c.next = columnio.Triple{}
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading column %s", c.name)
	}

	if err := c.check(t); err != nil {
		return err
	}
	c.rn.Next(t.RepetitionLevel, t.DefinitionLevel)
	c.next = t
	return nil
}

// check validates a triple before it is accepted as lookahead.
func (c *cursor) check(t columnio.Triple) error {
	var reason string
	switch r, d := t.RepetitionLevel, t.DefinitionLevel; {
	case r < 0 || d < 0:
		reason = "negative level"
	case r > c.maxR:
		reason = fmt.Sprintf("repetition level above maximum %d", c.maxR)
	case d > c.maxD:
		reason = fmt.Sprintf("definition level above maximum %d", c.maxD)
	case r > d:
		reason = "repetition level above definition level"
	case r != 0 && !c.rn.Valid():
		reason = "column does not start with a record"
	case d == c.maxD && t.Value.IsNull():
		reason = "missing value at maximum definition level"
	case d < c.maxD && !t.Value.IsNull():
		reason = "value below maximum definition level"
	case !t.Value.IsNull() && t.Value.Kind() != c.typ:
		reason = fmt.Sprintf("%s value in %s column", t.Value.Kind(), c.typ)
	default:
		return nil
	}

	rec := int64(0)
	if c.rn.Valid() {
		rec = c.rn.Record()
		if t.RepetitionLevel == 0 {
			rec++
		}
	}
	return &columnio.CorruptColumnError{Column: c.name, Record: rec, Reason: fmt.Sprintf("%s: %s", reason, t)}
}

// corrupt reports a problem with the lookahead triple.
func (c *cursor) corrupt(reason string) error {
	return &columnio.CorruptColumnError{Column: c.name, Record: c.rn.Record(), Reason: reason}
}

// corruptConsumed reports a problem with the triple consumed last.
func (c *cursor) corruptConsumed(reason string) error {
	return &columnio.CorruptColumnError{Column: c.name, Record: c.consumed, Reason: reason}
}
