package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/columnstore"
	"github.com/grafana/columnio/pkg/parquetio"
	"github.com/grafana/columnio/pkg/record"
	"github.com/grafana/columnio/pkg/shredder"
)

type shredCmd struct {
	schemaOptions

	Records     string `arg:"" type:"existingfile" help:"JSON lines file with one record per line"`
	Out         string `arg:"" type:"path" help:"file to create"`
	Format      string `enum:"columns,parquet" default:"columns" help:"output format: columns or parquet"`
	Encoding    string `help:"override the configured column container encoding"`
	Compression string `help:"override the configured parquet compression"`
	SkipInvalid bool   `help:"skip records that do not match the schema instead of failing"`
}

func (cmd *shredCmd) Run(g *globalOptions) error {
	cfg, err := g.setup()
	if err != nil {
		return err
	}
	if cmd.Encoding != "" {
		if cfg.Store.Encoding, err = columnstore.ParseEncoding(cmd.Encoding); err != nil {
			return err
		}
	}
	if cmd.Compression != "" {
		cfg.Parquet.Compression = cmd.Compression
	}

	tree, err := cmd.loadTree()
	if err != nil {
		return err
	}

	var (
		written int64
		skipped int
	)
	err = createFile(cmd.Out, func(w io.Writer) error {
		var (
			write func(*record.Group) error
			flush func() error
		)

		switch cmd.Format {
		case formatColumns:
			store := columnstore.NewStore(tree, cfg.Store, g.logger)
			s, err := shredder.New(tree, store.Writers(), shredder.WithLogger(g.logger))
			if err != nil {
				return err
			}
			write = s.Shred
			flush = func() error {
				n, err := store.Flush(context.Background(), w)
				written = n
				return err
			}

		case formatParquet:
			pw, err := parquetio.NewWriter(w, tree, cfg.Parquet, g.logger)
			if err != nil {
				return err
			}
			write = pw.Write
			flush = pw.Close

		default:
			return errors.Errorf("unknown format %s", cmd.Format)
		}

		err := readRecords(cmd.Records, tree, func(line int, rec *record.Group) error {
			err := write(rec)
			var shapeErr *columnio.RecordShapeError
			if cmd.SkipInvalid && errors.As(err, &shapeErr) {
				level.Warn(g.logger).Log("msg", "skipping record", "line", line, "err", err)
				skipped++
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
			return nil
		})
		if err != nil {
			return err
		}
		return flush()
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(g.out, "wrote %s (%s)", cmd.Out, cmd.Format)
	if written > 0 {
		fmt.Fprintf(g.out, ", %s", humanize.Bytes(uint64(written)))
	}
	if skipped > 0 {
		fmt.Fprintf(g.out, ", skipped %s invalid records", humanize.Comma(int64(skipped)))
	}
	fmt.Fprintln(g.out)
	return nil
}
