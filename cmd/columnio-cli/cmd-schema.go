package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

type schemaCmd struct {
	schemaOptions

	Tree bool `help:"print the full node tree instead of the leaf columns"`
}

func (cmd *schemaCmd) Run(g *globalOptions) error {
	if _, err := g.setup(); err != nil {
		return err
	}
	tree, err := cmd.loadTree()
	if err != nil {
		return err
	}

	fmt.Fprint(g.out, tree.String())
	fmt.Fprintf(g.out, "fingerprint: %016x\n\n", tree.Fingerprint())

	if cmd.Tree {
		fmt.Fprint(g.out, tree.Describe())
		return nil
	}

	x := table.NewWriter()
	x.AppendHeader(table.Row{"leaf", "column", "type", "repetition", "max r", "max d"})
	for i, id := range tree.Leaves() {
		n := tree.Node(id)
		typ := n.Type().String()
		if a := n.Annotation().String(); a != "" {
			typ += " (" + a + ")"
		}
		x.AppendRow(table.Row{
			strconv.Itoa(i),
			n.Path().String(),
			typ,
			n.Repetition().String(),
			n.Path().RepetitionLevel(),
			n.Path().DefinitionLevel(),
		})
	}
	fmt.Fprintln(g.out, x.Render())
	return nil
}
