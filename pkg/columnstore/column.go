package columnstore

import (
	"github.com/grafana/columnio/pkg/columnio"
)

// Column keeps the triples of one leaf in memory. It is written once and can
// then be read any number of times.
type Column struct {
	leaf columnio.NodeID
	path columnio.LogicalPath

	triples []columnio.Triple
	stats   *Statistics
}

var _ columnio.ColumnWriter = (*Column)(nil)

func newColumn(tree *columnio.Tree, leaf columnio.NodeID) *Column {
	return &Column{
		leaf:  leaf,
		path:  tree.Path(leaf),
		stats: newStatistics(),
	}
}

// WriteTriple appends a copy of t.
func (c *Column) WriteTriple(t columnio.Triple) error {
	t.Value = t.Value.Clone()
	c.triples = append(c.triples, t)
	c.stats.update(t)
	return nil
}

// Reader returns a reader positioned at the first triple.
func (c *Column) Reader() columnio.ColumnReader {
	return columnio.NewSliceReader(c.triples)
}

func (c *Column) Leaf() columnio.NodeID        { return c.leaf }
func (c *Column) Path() columnio.LogicalPath   { return c.path }
func (c *Column) Len() int                     { return len(c.triples) }
func (c *Column) Statistics() *Statistics      { return c.stats }
func (c *Column) Triple(i int) columnio.Triple { return c.triples[i] }
