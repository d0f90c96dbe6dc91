// Package shredder splits nested records into one triple stream per leaf
// column of a columnio.Tree.
package shredder

import (
	"fmt"
	"slices"

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
	metricRecordsShredded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "columnio",
		Name:      "shredder_records_total",
		Help:      "Total number of records shredded into columns.",
	})
	metricShapeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "columnio",
		Name:      "shredder_shape_errors_total",
		Help:      "Total number of records rejected because they do not match the schema.",
	})
	metricTriplesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "columnio",
		Name:      "shredder_triples_written_total",
		Help:      "Total number of triples handed to column writers.",
	})
)

// Option configures a Shredder.
type Option func(*Shredder)

// WithLogger sets the logger rejected records are reported to.
func WithLogger(logger log.Logger) Option {
	return func(s *Shredder) {
		s.logger = logger
	}
}

// Shredder writes records to the leaf columns of a tree. It is not safe for
// concurrent use; the tree it shreds for may be shared freely.
type Shredder struct {
	tree    *columnio.Tree
	writers []columnio.ColumnWriter
	logger  log.Logger

	// child lookup per group node
	fields map[columnio.NodeID]map[string]columnio.NodeID

	// triples of the record being shredded, per leaf
	staged [][]columnio.Triple

	records int64
}

// New returns a shredder writing leaf i of tree to writers[i].
func New(tree *columnio.Tree, writers []columnio.ColumnWriter, opts ...Option) (*Shredder, error) {
	if len(writers) != tree.NumLeaves() {
		return nil, errors.Errorf("tree %s has %d leaves, got %d column writers", tree.Name(), tree.NumLeaves(), len(writers))
	}

	s := &Shredder{
		tree:    tree,
		writers: writers,
		logger:  log.NewNopLogger(),
		fields:  map[columnio.NodeID]map[string]columnio.NodeID{},
		staged:  make([][]columnio.Triple, tree.NumLeaves()),
	}
	for _, opt := range opts {
		opt(s)
	}

	for id := columnio.NodeID(0); int(id) < tree.NumNodes(); id++ {
		n := tree.Node(id)
		if n.Kind() != columnio.GroupKind {
			continue
		}
		m := make(map[string]columnio.NodeID, len(n.Children()))
		for _, c := range n.Children() {
			m[tree.Node(c).Name()] = c
		}
		s.fields[id] = m
	}
	return s, nil
}

// Records is the number of records shredded so far.
func (s *Shredder) Records() int64 {
	return s.records
}

// Shred writes one record. A record that does not match the tree is
// rejected with a *columnio.RecordShapeError before anything reaches the
// writers, and the shredder can go on with the next record.
func (s *Shredder) Shred(rec *record.Group) error {
	for i := range s.staged {
		s.staged[i] = s.staged[i][:0]
	}

	if rec == nil {
		return s.reject(&columnio.RecordShapeError{Reason: "record is nil"})
	}
	if err := s.shredGroup(columnio.RootID, rec, 0, 0); err != nil {
		return s.reject(err)
	}

	for i, triples := range s.staged {
		for _, t := range triples {
			if err := s.writers[i].WriteTriple(t); err != nil {
				return errors.Wrapf(err, "writing column %s", s.tree.Path(s.tree.Leaf(i)))
			}
		}
		metricTriplesWritten.Add(float64(len(triples)))
	}

	s.records++
	metricRecordsShredded.Inc()
	return nil
}

func (s *Shredder) reject(err error) error {
	metricShapeErrors.Inc()
	level.Debug(s.logger).Log("msg", "rejected record", "record", s.records, "err", err)
	return err
}

// shredGroup emits the triples of a present group instance. r is the
// repetition level of the instance's first triple, d its definition level.
func (s *Shredder) shredGroup(id columnio.NodeID, g *record.Group, r, d int) error {
	fields := s.fields[id]
	for _, name := range g.Names() {
		if _, ok := fields[name]; !ok {
			return shapeError(s.tree.Path(id), name, "unexpected field")
		}
	}

	for _, c := range s.tree.Node(id).Children() {
		n := s.tree.Node(c)
		v, ok := g.Get(n.Name())

		switch n.Repetition() {
		case schema.Required:
			if !ok {
				return shapeError(n.Path(), "", "required field is missing")
			}
			if v == nil {
				return shapeError(n.Path(), "", "required field is null")
			}
			if err := s.shredValue(c, v, r); err != nil {
				return err
			}

		case schema.Optional:
			if !ok || v == nil {
				s.writeNulls(c, r, d)
				continue
			}
			if err := s.shredValue(c, v, r); err != nil {
				return err
			}

		case schema.Repeated:
			if !ok || v == nil {
				s.writeNulls(c, r, d)
				continue
			}
			list, isList := v.([]any)
			if !isList {
				return shapeError(n.Path(), "", fmt.Sprintf("repeated field needs a list, got %T", v))
			}
			if len(list) == 0 {
				s.writeNulls(c, r, d)
				continue
			}
			for i, e := range list {
				if e == nil {
					return shapeError(n.Path(), "", fmt.Sprintf("list element %d is null", i))
				}
				rr := r
				if i > 0 {
					rr = n.Path().RepetitionLevel()
				}
				if err := s.shredValue(c, e, rr); err != nil {
					return err
				}
			}

		default:
			panic(fmt.Sprintf("shredder: node %d has unexpected repetition %d", c, n.Repetition()))
		}
	}
	return nil
}

// shredValue emits one present instance of node id.
func (s *Shredder) shredValue(id columnio.NodeID, v any, r int) error {
	n := s.tree.Node(id)
	d := n.Path().DefinitionLevel()

	switch n.Kind() {
	case columnio.GroupKind:
		g, ok := v.(*record.Group)
		if !ok || g == nil {
			return shapeError(n.Path(), "", fmt.Sprintf("expected a group, got %T", v))
		}
		return s.shredGroup(id, g, r, d)

	case columnio.PrimitiveKind:
		val, err := toValue(n.Type(), v)
		if err != nil {
			return shapeError(n.Path(), "", err.Error())
		}
		leaf := n.LeafIndex()
		s.staged[leaf] = append(s.staged[leaf], columnio.Triple{Value: val, RepetitionLevel: r, DefinitionLevel: d})
		return nil

	default:
		panic(fmt.Sprintf("shredder: node %d has unexpected kind %d", id, n.Kind()))
	}
}

// writeNulls emits one absent triple for every leaf below id. Leaves of a
// subtree are contiguous in column order.
func (s *Shredder) writeNulls(id columnio.NodeID, r, d int) {
	first := s.tree.Node(s.tree.FirstLeaf(id)).LeafIndex()
	last := s.tree.Node(s.tree.LastLeaf(id)).LeafIndex()
	for leaf := first; leaf <= last; leaf++ {
		s.staged[leaf] = append(s.staged[leaf], columnio.Null(r, d))
	}
}

func shapeError(p columnio.LogicalPath, field, reason string) *columnio.RecordShapeError {
	path := slices.Clone(p.Names())
	if field != "" {
		path = append(path, field)
	}
	return &columnio.RecordShapeError{Path: path, Reason: reason}
}
