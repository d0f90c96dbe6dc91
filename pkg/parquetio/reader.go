package parquetio

import (
	"io"

	"github.com/go-kit/log"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/columnstore"
)

const readBatchSize = 64

// ReadColumns reads every row of a parquet file written for tree into the
// columns of a new store.
func ReadColumns(r io.ReaderAt, size int64, tree *columnio.Tree, cfg columnstore.Config, logger log.Logger) (*columnstore.Store, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "opening parquet file")
	}
	leaves, err := columnMapping(tree, f.Schema())
	if err != nil {
		return nil, errors.Wrap(columnstore.ErrSchemaMismatch, err.Error())
	}

	store := columnstore.NewStore(tree, cfg, logger)
	for i, rg := range f.RowGroups() {
		if err := readRowGroup(store, rg, leaves); err != nil {
			return nil, errors.Wrapf(err, "reading row group %d", i)
		}
	}
	return store, nil
}

func readRowGroup(store *columnstore.Store, rg parquet.RowGroup, leaves []int) (err error) {
	rows := rg.Rows()
	defer func() {
		err = multierr.Append(err, rows.Close())
	}()

	tree := store.Tree()
	buf := make([]parquet.Row, readBatchSize)
	for {
		for i := range buf {
			buf[i] = buf[i][:0]
		}
		n, readErr := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			for _, v := range row {
				col := v.Column()
				if col < 0 || col >= len(leaves) {
					return errors.Errorf("value for unknown column %d", col)
				}
				c := store.Column(leaves[col])
				val, err := fromParquet(tree.Node(c.Leaf()).Type(), v)
				if err != nil {
					return errors.Wrapf(err, "column %s", c.Path())
				}
				t := columnio.Triple{Value: val, RepetitionLevel: v.RepetitionLevel(), DefinitionLevel: v.DefinitionLevel()}
				if err := c.WriteTriple(t); err != nil {
					return err
				}
			}
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}
