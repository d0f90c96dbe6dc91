package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/schema"
)

type statsCmd struct {
	schemaOptions

	In     string `arg:"" type:"existingfile" help:"column container or parquet file"`
	Format string `enum:"columns,parquet" default:"columns" help:"input format: columns or parquet"`
	Probe  string `help:"report which columns may contain this value"`
}

func (cmd *statsCmd) Run(g *globalOptions) error {
	cfg, err := g.setup()
	if err != nil {
		return err
	}
	tree, err := cmd.loadTree()
	if err != nil {
		return err
	}

	store, err := openStore(context.Background(), g, cfg, tree, cmd.In, cmd.Format)
	if err != nil {
		return err
	}

	x := table.NewWriter()
	header := table.Row{"column", "type", "triples", "nulls", "distinct", "min", "max"}
	if cmd.Probe != "" {
		header = append(header, "probe")
	}
	x.AppendHeader(header)
	for _, c := range store.Columns() {
		st := c.Statistics()
		typ := tree.Node(c.Leaf()).Type()
		row := table.Row{
			c.Path().String(),
			typ.String(),
			humanize.Comma(st.Triples),
			humanize.Comma(st.Nulls),
			humanize.Comma(int64(st.Distinct())),
			st.Min.String(),
			st.Max.String(),
		}
		if cmd.Probe != "" {
			probe := "-"
			if v, err := parseValue(typ, cmd.Probe); err == nil {
				probe = "no"
				if st.MayContain(v) {
					probe = "maybe"
				}
			}
			row = append(row, probe)
		}
		x.AppendRow(row)
	}
	x.AppendFooter(table.Row{"records", humanize.Comma(store.Records()), "", "", "", "size", humanize.Bytes(uint64(store.UncompressedSize()))})

	fmt.Fprintln(g.out, x.Render())
	return nil
}

// parseValue reads a command line value as a value of the given type.
func parseValue(typ schema.PhysicalType, s string) (columnio.Value, error) {
	switch typ {
	case schema.Boolean:
		b, err := strconv.ParseBool(s)
		return columnio.BooleanValue(b), err
	case schema.Int32:
		i, err := strconv.ParseInt(s, 10, 32)
		return columnio.Int32Value(int32(i)), err
	case schema.Int64:
		i, err := strconv.ParseInt(s, 10, 64)
		return columnio.Int64Value(i), err
	case schema.Float:
		f, err := strconv.ParseFloat(s, 32)
		return columnio.FloatValue(float32(f)), err
	case schema.Double:
		f, err := strconv.ParseFloat(s, 64)
		return columnio.DoubleValue(f), err
	case schema.ByteArray:
		return columnio.StringValue(s), nil
	default:
		return columnio.Value{}, errors.Errorf("unsupported type %s", typ)
	}
}
