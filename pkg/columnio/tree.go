// Package columnio maps a nested record schema onto flat leaf columns.
//
// A Tree is built once per schema and is immutable afterwards, so it can be
// shared by any number of goroutines. Every leaf of the tree is one physical
// column; values in a leaf column carry a repetition and a definition level
// (Dremel encoding) from which the shredder and the assembler derive record
// structure.
package columnio

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/grafana/columnio/pkg/schema"
)

// NodeID addresses a node inside its Tree.
type NodeID int32

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Kind tells groups and primitives apart.
type Kind int8

const (
	GroupKind Kind = iota + 1
	PrimitiveKind
)

func (k Kind) String() string {
	switch k {
	case GroupKind:
		return "group"
	case PrimitiveKind:
		return "primitive"
	default:
		return "unknown"
	}
}

// Node is one entry of the tree arena. Nodes are only reachable through the
// Tree that owns them and expose no mutators.
type Node struct {
	name       string
	kind       Kind
	repetition schema.Repetition
	path       LogicalPath

	parent NodeID

	// group nodes
	children []NodeID

	// primitive nodes
	physical   schema.PhysicalType
	annotation schema.Annotation
	leaf       int

	first, last NodeID
}

func (n *Node) Name() string                  { return n.name }
func (n *Node) Kind() Kind                    { return n.kind }
func (n *Node) Repetition() schema.Repetition { return n.repetition }
func (n *Node) Path() LogicalPath             { return n.path }
func (n *Node) Parent() NodeID                { return n.parent }

// Children returns the ordered children of a group, nil for primitives. The
// slice must not be modified.
func (n *Node) Children() []NodeID { return n.children }

// Type is the physical type of a primitive, 0 for groups.
func (n *Node) Type() schema.PhysicalType    { return n.physical }
func (n *Node) Annotation() schema.Annotation { return n.annotation }

// LeafIndex is the position of a primitive in the leaf column order, -1 for
// groups.
func (n *Node) LeafIndex() int { return n.leaf }

func (n *Node) IsRepeated() bool { return n.repetition == schema.Repeated }

// Tree is the column tree of one schema.
type Tree struct {
	name   string
	nodes  []Node
	leaves []NodeID
	byPath map[string]NodeID

	text        string
	fingerprint uint64
}

// RootID is the NodeID of the root of every tree.
const RootID NodeID = 0

// NewTree builds the column tree of msg. The message itself becomes the
// root: it is treated as repeated at repetition and definition level 0, so
// level 0 boundary queries resolve to the record.
func NewTree(msg *schema.Message) (*Tree, error) {
	if msg == nil || len(msg.Fields) == 0 {
		return nil, &SchemaError{Reason: "schema has no fields"}
	}

	t := &Tree{
		name:   msg.Name,
		byPath: map[string]NodeID{},
	}
	t.nodes = append(t.nodes, Node{
		name:       msg.Name,
		kind:       GroupKind,
		repetition: schema.Repeated,
		parent:     NoNode,
		leaf:       -1,
	})

	children, err := t.addFields(RootID, msg.Fields)
	if err != nil {
		return nil, err
	}
	t.nodes[RootID].children = children
	t.link(RootID)

	t.text = msg.String()
	t.fingerprint = xxhash.Sum64String(t.text)
	return t, nil
}

// addFields appends the subtree of every field under parent and returns the
// ids of the direct children in declaration order.
func (t *Tree) addFields(parent NodeID, fields []*schema.Field) ([]NodeID, error) {
	parentPath := t.nodes[parent].path
	seen := make(map[string]struct{}, len(fields))
	ids := make([]NodeID, 0, len(fields))

	for _, f := range fields {
		if f == nil {
			return nil, &SchemaError{Path: parentPath.names, Reason: "nil field"}
		}
		path := parentPath.child(f.Name, f.Repetition)

		switch {
		case f.Name == "":
			return nil, &SchemaError{Path: parentPath.names, Reason: "field has no name"}
		case strings.Contains(f.Name, pathSeparator):
			return nil, &SchemaError{Path: path.names, Reason: fmt.Sprintf("field name contains %q", pathSeparator)}
		case !f.Repetition.Valid():
			return nil, &SchemaError{Path: path.names, Reason: fmt.Sprintf("unknown repetition %d", f.Repetition)}
		}
		if _, dup := seen[f.Name]; dup {
			return nil, &SchemaError{Path: path.names, Reason: "duplicate field name"}
		}
		seen[f.Name] = struct{}{}

		id := NodeID(len(t.nodes))
		n := Node{
			name:       f.Name,
			repetition: f.Repetition,
			path:       path,
			parent:     parent,
			leaf:       -1,
		}

		if f.IsGroup {
			if len(f.Fields) == 0 {
				return nil, &SchemaError{Path: path.names, Reason: "group has no fields"}
			}
			n.kind = GroupKind
			t.nodes = append(t.nodes, n)

			children, err := t.addFields(id, f.Fields)
			if err != nil {
				return nil, err
			}
			t.nodes[id].children = children
		} else {
			if len(f.Fields) > 0 {
				return nil, &SchemaError{Path: path.names, Reason: "primitive field declares child fields"}
			}
			if !f.Type.Valid() {
				return nil, &SchemaError{Path: path.names, Reason: fmt.Sprintf("unsupported physical type %d", f.Type)}
			}
			n.kind = PrimitiveKind
			n.physical = f.Type
			n.annotation = f.Annotation
			n.leaf = len(t.leaves)
			t.nodes = append(t.nodes, n)
			t.leaves = append(t.leaves, id)
			t.byPath[path.String()] = id
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// link caches the first and last leaf of every node below id.
func (t *Tree) link(id NodeID) {
	n := &t.nodes[id]
	switch n.kind {
	case PrimitiveKind:
		n.first, n.last = id, id
	case GroupKind:
		for _, c := range n.children {
			t.link(c)
		}
		n.first = t.nodes[n.children[0]].first
		n.last = t.nodes[n.children[len(n.children)-1]].last
	default:
		panic(fmt.Sprintf("columnio: node %d has unexpected kind %d", id, n.kind))
	}
}

// Name is the message name.
func (t *Tree) Name() string { return t.name }

// Node returns the node with the given id. It panics on an id that does not
// belong to t.
func (t *Tree) Node(id NodeID) *Node { return &t.nodes[id] }

// NumNodes is the number of nodes including the root.
func (t *Tree) NumNodes() int { return len(t.nodes) }

// Leaves returns the leaf nodes in pre-order. The slice must not be
// modified.
func (t *Tree) Leaves() []NodeID { return t.leaves }

// NumLeaves is the number of leaf columns.
func (t *Tree) NumLeaves() int { return len(t.leaves) }

// Leaf returns the i-th leaf in column order.
func (t *Tree) Leaf(i int) NodeID { return t.leaves[i] }

// LeafByPath looks up a leaf by its dotted path.
func (t *Tree) LeafByPath(path string) (NodeID, bool) {
	id, ok := t.byPath[path]
	return id, ok
}

// Path returns the logical path of a node.
func (t *Tree) Path(id NodeID) LogicalPath { return t.nodes[id].path }

// Fingerprint identifies the schema the tree was built from.
func (t *Tree) Fingerprint() uint64 { return t.fingerprint }

// String renders the schema in its text form.
func (t *Tree) String() string { return t.text }

// Describe renders the tree with the levels of every node, one per line.
func (t *Tree) Describe() string {
	var sb strings.Builder
	t.describe(&sb, RootID, 0)
	return sb.String()
}

func (t *Tree) describe(sb *strings.Builder, id NodeID, depth int) {
	n := &t.nodes[id]
	fmt.Fprintf(sb, "%s%s %s r=%d d=%d", strings.Repeat("  ", depth), n.repetition, n.name, n.path.repetitionLevel, n.path.definitionLevel)
	if n.kind == PrimitiveKind {
		fmt.Fprintf(sb, " %s leaf=%d", n.physical, n.leaf)
	}
	sb.WriteByte('\n')
	for _, c := range n.children {
		t.describe(sb, c, depth+1)
	}
}
