// Package parquetio moves records between column trees and parquet files.
// Repetition and definition levels are carried over unchanged, so a file
// written here reads back into the same triples.
package parquetio

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/schema"
)

// SchemaOf returns the parquet schema equivalent to tree.
func SchemaOf(tree *columnio.Tree) *parquet.Schema {
	return parquet.NewSchema(tree.Name(), groupOf(tree, columnio.RootID))
}

func groupOf(tree *columnio.Tree, id columnio.NodeID) parquet.Group {
	g := parquet.Group{}
	for _, c := range tree.Node(id).Children() {
		g[tree.Node(c).Name()] = nodeOf(tree, c)
	}
	return g
}

func nodeOf(tree *columnio.Tree, id columnio.NodeID) parquet.Node {
	n := tree.Node(id)

	var node parquet.Node
	switch n.Kind() {
	case columnio.GroupKind:
		node = groupOf(tree, id)
	case columnio.PrimitiveKind:
		node = leafOf(n)
	default:
		panic(fmt.Sprintf("parquetio: node %d has unexpected kind %d", id, n.Kind()))
	}

	switch n.Repetition() {
	case schema.Optional:
		node = parquet.Optional(node)
	case schema.Repeated:
		node = parquet.Repeated(node)
	default:
		node = parquet.Required(node)
	}
	return node
}

func leafOf(n *columnio.Node) parquet.Node {
	switch n.Type() {
	case schema.Boolean:
		return parquet.Leaf(parquet.BooleanType)
	case schema.Int32:
		return parquet.Leaf(parquet.Int32Type)
	case schema.Int64:
		return parquet.Leaf(parquet.Int64Type)
	case schema.Float:
		return parquet.Leaf(parquet.FloatType)
	case schema.Double:
		return parquet.Leaf(parquet.DoubleType)
	case schema.ByteArray:
		if n.Annotation() == schema.String {
			return parquet.String()
		}
		return parquet.Leaf(parquet.ByteArrayType)
	default:
		panic(fmt.Sprintf("parquetio: unsupported physical type %s", n.Type()))
	}
}

// columnMapping maps parquet column indexes, which follow the sorted field
// names of parquet groups, to leaf indexes of the tree.
func columnMapping(tree *columnio.Tree, sch *parquet.Schema) ([]int, error) {
	columns := sch.Columns()
	if len(columns) != tree.NumLeaves() {
		return nil, fmt.Errorf("parquet schema has %d columns, tree %s has %d leaves", len(columns), tree.Name(), tree.NumLeaves())
	}

	mapping := make([]int, len(columns))
	for i, path := range columns {
		leaf, ok := tree.LeafByPath(strings.Join(path, "."))
		if !ok {
			return nil, fmt.Errorf("parquet column %s not found in tree %s", strings.Join(path, "."), tree.Name())
		}
		mapping[i] = tree.Node(leaf).LeafIndex()
	}
	return mapping, nil
}

func toParquet(v columnio.Value) parquet.Value {
	switch v.Kind() {
	case 0:
		return parquet.Value{}
	case schema.Boolean:
		return parquet.BooleanValue(v.Boolean())
	case schema.Int32:
		return parquet.Int32Value(v.Int32())
	case schema.Int64:
		return parquet.Int64Value(v.Int64())
	case schema.Float:
		return parquet.FloatValue(v.Float())
	case schema.Double:
		return parquet.DoubleValue(v.Double())
	case schema.ByteArray:
		return parquet.ByteArrayValue(v.ByteArray())
	default:
		panic(fmt.Sprintf("parquetio: value of unexpected kind %d", v.Kind()))
	}
}

func fromParquet(typ schema.PhysicalType, v parquet.Value) (columnio.Value, error) {
	if v.IsNull() {
		return columnio.Value{}, nil
	}

	switch typ {
	case schema.Boolean:
		if v.Kind() == parquet.Boolean {
			return columnio.BooleanValue(v.Boolean()), nil
		}
	case schema.Int32:
		if v.Kind() == parquet.Int32 {
			return columnio.Int32Value(v.Int32()), nil
		}
	case schema.Int64:
		if v.Kind() == parquet.Int64 {
			return columnio.Int64Value(v.Int64()), nil
		}
	case schema.Float:
		if v.Kind() == parquet.Float {
			return columnio.FloatValue(v.Float()), nil
		}
	case schema.Double:
		if v.Kind() == parquet.Double {
			return columnio.DoubleValue(v.Double()), nil
		}
	case schema.ByteArray:
		if v.Kind() == parquet.ByteArray {
			return columnio.ByteArrayValue(v.ByteArray()), nil
		}
	}
	return columnio.Value{}, fmt.Errorf("parquet %s value in %s column", v.Kind(), typ)
}
