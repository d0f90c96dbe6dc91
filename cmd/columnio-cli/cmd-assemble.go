package main

import (
	"context"

	"github.com/grafana/columnio/pkg/assembler"
	"github.com/grafana/columnio/pkg/record"
)

type assembleCmd struct {
	schemaOptions

	In       string `arg:"" type:"existingfile" help:"column container or parquet file"`
	Format   string `enum:"columns,parquet" default:"columns" help:"input format: columns or parquet"`
	Limit    int64  `help:"stop after this many records, 0 for all"`
	Prefetch int    `default:"0" help:"read every column ahead in batches of this many triples, 0 to disable"`
}

func (cmd *assembleCmd) Run(g *globalOptions) error {
	cfg, err := g.setup()
	if err != nil {
		return err
	}
	tree, err := cmd.loadTree()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, g, cfg, tree, cmd.In, cmd.Format)
	if err != nil {
		return err
	}

	opts := []assembler.Option{assembler.WithLogger(g.logger)}
	if cmd.Prefetch > 0 {
		opts = append(opts, assembler.WithPrefetch(ctx, cmd.Prefetch))
	}
	a, err := assembler.New(tree, store.Readers(), opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	for rec, err := range a.All() {
		if err != nil {
			return err
		}
		data, err := record.ToJSON(rec)
		if err != nil {
			return err
		}
		data = append(data, '\n')
		if _, err := g.out.Write(data); err != nil {
			return err
		}
		if cmd.Limit > 0 && a.Records() >= cmd.Limit {
			break
		}
	}
	return nil
}
