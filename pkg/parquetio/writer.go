package parquetio

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/record"
	"github.com/grafana/columnio/pkg/shredder"
)

// Writer shreds records into a parquet file, one row per record.
type Writer struct {
	tree   *columnio.Tree
	logger log.Logger

	pw       *parquet.Writer
	shredder *shredder.Shredder
	buffers  []*columnio.SliceWriter

	// parquet column index to leaf index
	leaves []int
	row    parquet.Row
	rows   int64
}

// NewWriter returns a writer of parquet data with the schema of tree to w.
// Close must be called to write the file footer.
func NewWriter(w io.Writer, tree *columnio.Tree, cfg Config, logger log.Logger) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	sch := SchemaOf(tree)
	leaves, err := columnMapping(tree, sch)
	if err != nil {
		return nil, err
	}
	comp, err := codec(cfg.Compression)
	if err != nil {
		return nil, err
	}

	pw := &Writer{
		tree:    tree,
		logger:  logger,
		buffers: make([]*columnio.SliceWriter, tree.NumLeaves()),
		leaves:  leaves,
	}
	writers := make([]columnio.ColumnWriter, tree.NumLeaves())
	for i := range pw.buffers {
		pw.buffers[i] = &columnio.SliceWriter{}
		writers[i] = pw.buffers[i]
	}
	pw.shredder, err = shredder.New(tree, writers, shredder.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	pw.pw = parquet.NewWriter(w, sch,
		parquet.Compression(comp),
		parquet.MaxRowsPerRowGroup(cfg.RowsPerGroup),
		&parquet.WriterConfig{PageBufferSize: cfg.PageBufferSize},
	)
	return pw, nil
}

// Write appends one record. Records that do not match the tree are rejected
// with a *columnio.RecordShapeError and the writer remains usable.
func (w *Writer) Write(rec *record.Group) error {
	for _, b := range w.buffers {
		b.Triples = b.Triples[:0]
	}
	if err := w.shredder.Shred(rec); err != nil {
		return err
	}

	w.row = w.row[:0]
	for col, leaf := range w.leaves {
		for _, t := range w.buffers[leaf].Triples {
			w.row = append(w.row, toParquet(t.Value).Level(t.RepetitionLevel, t.DefinitionLevel, col))
		}
	}
	if _, err := w.pw.WriteRows([]parquet.Row{w.row}); err != nil {
		return errors.Wrap(err, "writing parquet row")
	}
	w.rows++
	return nil
}

// Close flushes buffered rows and writes the footer. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if err := w.pw.Close(); err != nil {
		return errors.Wrap(err, "closing parquet writer")
	}
	level.Debug(w.logger).Log("msg", "wrote parquet file", "schema", w.tree.Name(), "rows", w.rows)
	return nil
}
