// Package columnstore keeps shredded columns in memory and moves them in and
// out of a compressed container.
package columnstore

import (
	"github.com/go-kit/log"

	"github.com/grafana/columnio/pkg/columnio"
)

// Store holds one Column per leaf of a tree.
type Store struct {
	tree    *columnio.Tree
	cfg     Config
	logger  log.Logger
	columns []*Column
}

// NewStore returns an empty store for tree.
func NewStore(tree *columnio.Tree, cfg Config, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	s := &Store{
		tree:    tree,
		cfg:     cfg,
		logger:  logger,
		columns: make([]*Column, tree.NumLeaves()),
	}
	for i, leaf := range tree.Leaves() {
		s.columns[i] = newColumn(tree, leaf)
	}
	return s
}

func (s *Store) Tree() *columnio.Tree { return s.tree }

// Config is the configuration the store flushes with. For an opened store
// the encoding is the one found in the container.
func (s *Store) Config() Config { return s.cfg }

// Columns returns the columns in leaf order. The slice must not be modified.
func (s *Store) Columns() []*Column { return s.columns }

func (s *Store) Column(leaf int) *Column { return s.columns[leaf] }

// Writers returns the columns as writers for a shredder.
func (s *Store) Writers() []columnio.ColumnWriter {
	ws := make([]columnio.ColumnWriter, len(s.columns))
	for i, c := range s.columns {
		ws[i] = c
	}
	return ws
}

// Readers returns fresh readers over all columns for an assembler.
func (s *Store) Readers() []columnio.ColumnReader {
	rs := make([]columnio.ColumnReader, len(s.columns))
	for i, c := range s.columns {
		rs[i] = c.Reader()
	}
	return rs
}

// Records is the number of records in the store, as counted by the first
// column.
func (s *Store) Records() int64 {
	if len(s.columns) == 0 {
		return 0
	}
	return s.columns[0].stats.Records
}
