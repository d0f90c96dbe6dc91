package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/columnstore"
	"github.com/grafana/columnio/pkg/parquetio"
	"github.com/grafana/columnio/pkg/record"
	"github.com/grafana/columnio/pkg/schema"
)

const (
	formatColumns = "columns"
	formatParquet = "parquet"
)

// maxRecordSize bounds a single JSON line.
const maxRecordSize = 64 << 20

type schemaOptions struct {
	SchemaFile string `arg:"" name:"schema" type:"existingfile" help:"schema declaration file"`
}

func (o *schemaOptions) loadTree() (*columnio.Tree, error) {
	text, err := os.ReadFile(o.SchemaFile)
	if err != nil {
		return nil, err
	}
	msg, err := schema.Parse(string(text))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", o.SchemaFile)
	}
	return columnio.NewTree(msg)
}

// readRecords calls fn for every non-empty line of a JSON lines file.
func readRecords(path string, tree *columnio.Tree, fn func(line int, rec *record.Group) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		rec, err := record.FromJSON(tree, data)
		if err != nil {
			return errors.Wrapf(err, "%s:%d", path, line)
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// openStore loads the columns of a container or parquet file.
func openStore(ctx context.Context, g *globalOptions, cfg *Config, tree *columnio.Tree, path, format string) (_ *columnstore.Store, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	switch format {
	case formatColumns:
		return columnstore.Open(ctx, tree, bufio.NewReader(f), cfg.Store, g.logger)
	case formatParquet:
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		return parquetio.ReadColumns(f, info.Size(), tree, cfg.Store, g.logger)
	default:
		return nil, errors.Errorf("unknown format %s", format)
	}
}

// createFile creates path and hands it to fn, removing it again when fn
// fails.
func createFile(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		return err
	}
	return w.Flush()
}
