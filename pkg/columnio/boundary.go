package columnio

import (
	"fmt"
)

// FirstLeaf returns the left-most leaf below id (id itself for a leaf).
func (t *Tree) FirstLeaf(id NodeID) NodeID {
	n := &t.nodes[id]
	switch n.kind {
	case PrimitiveKind:
		return id
	case GroupKind:
		return n.first
	default:
		panic(fmt.Sprintf("columnio: node %d has unexpected kind %d", id, n.kind))
	}
}

// LastLeaf returns the right-most leaf below id (id itself for a leaf).
func (t *Tree) LastLeaf(id NodeID) NodeID {
	n := &t.nodes[id]
	switch n.kind {
	case PrimitiveKind:
		return id
	case GroupKind:
		return n.last
	default:
		panic(fmt.Sprintf("columnio: node %d has unexpected kind %d", id, n.kind))
	}
}

// AncestorAtRepetitionLevel returns the nearest repeated node at repetition
// level r enclosing id, id included. The walk only climbs to a parent whose
// definition level is at least r: above that point no node can repeat at
// level r. Level 0 resolves to the root.
func (t *Tree) AncestorAtRepetitionLevel(id NodeID, r int) (NodeID, error) {
	for cur := id; ; {
		n := &t.nodes[cur]
		if n.path.repetitionLevel == r && n.IsRepeated() {
			return cur, nil
		}
		if n.parent == NoNode || t.nodes[n.parent].path.definitionLevel < r {
			return NoNode, &InvalidPathError{Path: t.nodes[id].path, RepetitionLevel: r}
		}
		cur = n.parent
	}
}

// IsFirstLeafUnderRepetitionBoundary reports whether leaf is the left-most
// leaf of its enclosing repeated node at level r, meaning that a new
// instance at that level starts with this column.
func (t *Tree) IsFirstLeafUnderRepetitionBoundary(leaf NodeID, r int) (bool, error) {
	anc, err := t.AncestorAtRepetitionLevel(leaf, r)
	if err != nil {
		return false, err
	}
	return t.FirstLeaf(anc) == leaf, nil
}

// IsLastLeafUnderRepetitionBoundary reports whether leaf is the right-most
// leaf of its enclosing repeated node at level r, meaning that an instance
// at that level is complete once this column has been handled.
func (t *Tree) IsLastLeafUnderRepetitionBoundary(leaf NodeID, r int) (bool, error) {
	anc, err := t.AncestorAtRepetitionLevel(leaf, r)
	if err != nil {
		return false, err
	}
	return t.LastLeaf(anc) == leaf, nil
}

// RootToLeafPath returns the chain of nodes from the root down to id, both
// included.
func (t *Tree) RootToLeafPath(id NodeID) []NodeID {
	depth := t.nodes[id].path.Len()
	chain := make([]NodeID, depth+1)
	for cur := id; cur != NoNode; cur = t.nodes[cur].parent {
		chain[depth] = cur
		depth--
	}
	return chain
}
