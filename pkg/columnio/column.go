package columnio

import (
	"io"
)

// ColumnWriter accepts the triples of one leaf column, in order.
type ColumnWriter interface {
	WriteTriple(Triple) error
}

// ColumnReader produces the triples of one leaf column, in order. ReadTriple
// returns io.EOF once the column is exhausted.
type ColumnReader interface {
	ReadTriple() (Triple, error)
}

// SliceReader reads triples from a slice.
type SliceReader struct {
	triples []Triple
	pos     int
}

var _ ColumnReader = (*SliceReader)(nil)

func NewSliceReader(triples []Triple) *SliceReader {
	return &SliceReader{triples: triples}
}

func (s *SliceReader) ReadTriple() (Triple, error) {
	if s.pos >= len(s.triples) {
		return Triple{}, io.EOF
	}
	t := s.triples[s.pos]
	s.pos++
	return t, nil
}

// SliceWriter collects triples in memory.
type SliceWriter struct {
	Triples []Triple
}

var _ ColumnWriter = (*SliceWriter)(nil)

func (s *SliceWriter) WriteTriple(t Triple) error {
	s.Triples = append(s.Triples, t)
	return nil
}
