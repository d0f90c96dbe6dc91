package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/record"
	"github.com/grafana/columnio/pkg/shredder"
)

type levelsCmd struct {
	schemaOptions

	Records string `arg:"" type:"existingfile" help:"JSON lines file with one record per line"`
}

func (cmd *levelsCmd) Run(g *globalOptions) error {
	if _, err := g.setup(); err != nil {
		return err
	}
	tree, err := cmd.loadTree()
	if err != nil {
		return err
	}

	sinks := make([]*columnio.SliceWriter, tree.NumLeaves())
	writers := make([]columnio.ColumnWriter, tree.NumLeaves())
	for i := range sinks {
		sinks[i] = &columnio.SliceWriter{}
		writers[i] = sinks[i]
	}
	s, err := shredder.New(tree, writers, shredder.WithLogger(g.logger))
	if err != nil {
		return err
	}

	err = readRecords(cmd.Records, tree, func(line int, rec *record.Group) error {
		if err := s.Shred(rec); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, sink := range sinks {
		x := table.NewWriter()
		x.SetTitle(tree.Path(tree.Leaf(i)).String())
		x.AppendHeader(table.Row{"value", "r", "d"})
		for _, t := range sink.Triples {
			x.AppendRow(table.Row{t.Value.String(), t.RepetitionLevel, t.DefinitionLevel})
		}
		fmt.Fprintln(g.out, x.Render())
	}
	return nil
}
