// Package assembler rebuilds nested records from the triple streams of the
// leaf columns of a columnio.Tree.
package assembler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/record"
	"github.com/grafana/columnio/pkg/schema"
)

var (
	metricRecordsAssembled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "columnio",
		Name:      "assembler_records_total",
		Help:      "Total number of records assembled from columns.",
	})
	metricCorruptColumns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "columnio",
		Name:      "assembler_corrupt_column_errors_total",
		Help:      "Total number of times assembly stopped on inconsistent column data.",
	})
)

// Option configures an Assembler.
type Option func(*options)

type options struct {
	logger log.Logger

	prefetchCtx  context.Context
	prefetchSize int
}

// WithLogger sets the logger corruptions are reported to.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPrefetch reads every column ahead on its own goroutine in batches of
// bufferSize triples. The assembler must be closed when it is not drained to
// io.EOF.
func WithPrefetch(ctx context.Context, bufferSize int) Option {
	return func(o *options) {
		o.prefetchCtx = ctx
		o.prefetchSize = bufferSize
	}
}

// Assembler yields one record per call to Next. It is not safe for
// concurrent use.
type Assembler struct {
	tree    *columnio.Tree
	cursors []*cursor
	logger  log.Logger

	prefetch []*columnio.PrefetchReader

	started bool
	records int64
	err     error
}

// New returns an assembler reading leaf i of tree from readers[i]. Readers
// are not touched before the first call to Next.
func New(tree *columnio.Tree, readers []columnio.ColumnReader, opts ...Option) (*Assembler, error) {
	if len(readers) != tree.NumLeaves() {
		return nil, errors.Errorf("tree %s has %d leaves, got %d column readers", tree.Name(), tree.NumLeaves(), len(readers))
	}

	o := options{logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &Assembler{
		tree:    tree,
		cursors: make([]*cursor, len(readers)),
		logger:  o.logger,
	}
	for i, r := range readers {
		if o.prefetchSize > 0 {
			p := columnio.NewPrefetchReader(o.prefetchCtx, r, o.prefetchSize)
			a.prefetch = append(a.prefetch, p)
			r = p
		}
		a.cursors[i] = newCursor(tree, tree.Leaf(i), r)
	}
	return a, nil
}

// Records is the number of records assembled so far.
func (a *Assembler) Records() int64 {
	return a.records
}

// Next returns the next record, or io.EOF once every column is exhausted.
// Inconsistent columns yield a *columnio.CorruptColumnError; errors are
// sticky.
func (a *Assembler) Next() (*record.Group, error) {
	if a.err != nil {
		return nil, a.err
	}

	g, err := a.next()
	if err != nil {
		if err != io.EOF {
			var corrupt *columnio.CorruptColumnError
			if errors.As(err, &corrupt) {
				metricCorruptColumns.Inc()
				level.Warn(a.logger).Log("msg", "corrupt column data", "err", err)
			}
		}
		a.err = err
		return nil, err
	}

	a.records++
	metricRecordsAssembled.Inc()
	return g, nil
}

// All iterates over the remaining records. Iteration stops after the first
// error, which is yielded with a nil record.
func (a *Assembler) All() iter.Seq2[*record.Group, error] {
	return func(yield func(*record.Group, error) bool) {
		for {
			g, err := a.Next()
			if err == io.EOF {
				return
			}
			if !yield(g, err) || err != nil {
				return
			}
		}
	}
}

// Close stops read-ahead goroutines started by WithPrefetch.
func (a *Assembler) Close() {
	for _, p := range a.prefetch {
		p.Close()
	}
}

func (a *Assembler) next() (*record.Group, error) {
	if !a.started {
		a.started = true
		for _, c := range a.cursors {
			if err := c.advance(); err != nil {
				return nil, err
			}
		}
	}

	eof, err := a.atBoundary()
	if err != nil {
		return nil, err
	}
	if eof {
		return nil, io.EOF
	}

	g := record.NewGroup()
	if err := a.assembleGroup(columnio.RootID, g, 0); err != nil {
		return nil, err
	}

	// every triple of the record must have been consumed
	for _, c := range a.cursors {
		if !c.eof && c.next.RepetitionLevel != 0 {
			return nil, c.corrupt(fmt.Sprintf("record continues past its last field with %s", c.next))
		}
	}
	return g, nil
}

// atBoundary checks that every cursor sits on the start of a record or that
// all of them are exhausted.
func (a *Assembler) atBoundary() (bool, error) {
	var ended, open *cursor
	for _, c := range a.cursors {
		if c.eof {
			ended = c
			continue
		}
		open = c
		if c.next.RepetitionLevel != 0 {
			return false, c.corrupt(fmt.Sprintf("expected the start of a record, got %s", c.next))
		}
	}

	switch {
	case open == nil:
		return true, nil
	case ended != nil:
		return false, &columnio.CorruptColumnError{
			Column: ended.name,
			Record: a.records,
			Reason: fmt.Sprintf("column ended while %s has more records", open.name),
		}
	}
	return false, nil
}

// assembleGroup fills g with the children of a present instance of id whose
// first triples carry repetition level r.
func (a *Assembler) assembleGroup(id columnio.NodeID, g *record.Group, r int) error {
	for _, c := range a.tree.Node(id).Children() {
		n := a.tree.Node(c)
		first := a.cursors[a.tree.Node(a.tree.FirstLeaf(c)).LeafIndex()]
		if first.eof {
			return a.ended(first)
		}

		if first.next.DefinitionLevel < n.Path().DefinitionLevel() {
			if err := a.skipAbsent(c, r); err != nil {
				return err
			}
			if n.IsRepeated() {
				g.Set(n.Name(), []any{})
			}
			continue
		}

		if !n.IsRepeated() {
			v, err := a.assembleValue(c, r)
			if err != nil {
				return err
			}
			g.Set(n.Name(), v)
			continue
		}

		list := []any{}
		for rr := r; ; rr = n.Path().RepetitionLevel() {
			v, err := a.assembleValue(c, rr)
			if err != nil {
				return err
			}
			list = append(list, v)

			more, err := a.continues(c, first)
			if err != nil {
				return err
			}
			if !more {
				break
			}
		}
		g.Set(n.Name(), list)
	}
	return nil
}

// continues reports whether the next triple of the first leaf of the repeated
// node id starts another element of the same list.
func (a *Assembler) continues(id columnio.NodeID, first *cursor) (bool, error) {
	if first.eof {
		return false, nil
	}
	anc, err := a.tree.AncestorAtRepetitionLevel(first.leaf, first.next.RepetitionLevel)
	if err != nil {
		return false, first.corrupt(err.Error())
	}
	if anc == id {
		return true, nil
	}
	if a.tree.Path(anc).RepetitionLevel() > a.tree.Path(id).RepetitionLevel() {
		return false, first.corrupt(fmt.Sprintf("repetition at level %d after a completed element of %s", first.next.RepetitionLevel, a.tree.Path(id)))
	}
	return false, nil
}

// assembleValue consumes one present instance of id.
func (a *Assembler) assembleValue(id columnio.NodeID, r int) (any, error) {
	n := a.tree.Node(id)
	switch n.Kind() {
	case columnio.GroupKind:
		g := record.NewGroup()
		if err := a.assembleGroup(id, g, r); err != nil {
			return nil, err
		}
		return g, nil

	case columnio.PrimitiveKind:
		c := a.cursors[n.LeafIndex()]
		t, err := a.consume(c, r)
		if err != nil {
			return nil, err
		}
		if t.DefinitionLevel != c.maxD {
			return nil, c.corruptConsumed(fmt.Sprintf("missing value for defined field, got %s", t))
		}
		return nativeValue(n, t.Value), nil

	default:
		panic(fmt.Sprintf("assembler: node %d has unexpected kind %d", id, n.Kind()))
	}
}

// skipAbsent consumes the single absent triple every leaf below id carries
// when id is not defined.
func (a *Assembler) skipAbsent(id columnio.NodeID, r int) error {
	d := a.tree.Path(id).DefinitionLevel() - 1
	first := a.tree.Node(a.tree.FirstLeaf(id)).LeafIndex()
	last := a.tree.Node(a.tree.LastLeaf(id)).LeafIndex()
	for leaf := first; leaf <= last; leaf++ {
		c := a.cursors[leaf]
		t, err := a.consume(c, r)
		if err != nil {
			return err
		}
		if t.DefinitionLevel != d {
			return c.corruptConsumed(fmt.Sprintf("expected %s to be undefined at definition level %d, got %s", a.tree.Path(id), d, t))
		}
	}
	return nil
}

// consume takes the current triple of c, which must carry repetition level r,
// and reads ahead.
func (a *Assembler) consume(c *cursor, r int) (columnio.Triple, error) {
	if c.eof {
		return columnio.Triple{}, a.ended(c)
	}
	t := c.next
	if t.RepetitionLevel != r {
		return t, c.corrupt(fmt.Sprintf("expected repetition level %d, got %s", r, t))
	}
	if err := c.advance(); err != nil {
		return t, err
	}
	return t, nil
}

func (a *Assembler) ended(c *cursor) error {
	return &columnio.CorruptColumnError{Column: c.name, Record: a.records, Reason: "column ended inside a record"}
}

func nativeValue(n *columnio.Node, v columnio.Value) any {
	switch v.Kind() {
	case schema.Boolean:
		return v.Boolean()
	case schema.Int32:
		return v.Int32()
	case schema.Int64:
		return v.Int64()
	case schema.Float:
		return v.Float()
	case schema.Double:
		return v.Double()
	case schema.ByteArray:
		if n.Annotation() == schema.String {
			return string(v.ByteArray())
		}
		return bytes.Clone(v.ByteArray())
	default:
		panic(fmt.Sprintf("assembler: value of unexpected kind %d", v.Kind()))
	}
}
