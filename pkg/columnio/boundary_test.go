package columnio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAncestorAtRepetitionLevel(t *testing.T) {
	tree := mustTree(t, documentSchema)
	node := func(path ...string) NodeID {
		id := RootID
	next:
		for _, name := range path {
			for _, c := range tree.Node(id).Children() {
				if tree.Node(c).Name() == name {
					id = c
					continue next
				}
			}
			t.Fatalf("no child %s under %s", name, tree.Path(id))
		}
		return id
	}

	tcs := []struct {
		leaf     string
		r        int
		expected NodeID
	}{
		{leaf: "Name.Language.Code", r: 2, expected: node("Name", "Language")},
		{leaf: "Name.Language.Code", r: 1, expected: node("Name")},
		{leaf: "Name.Language.Code", r: 0, expected: RootID},
		{leaf: "Name.Language.Country", r: 2, expected: node("Name", "Language")},
		{leaf: "Name.Url", r: 1, expected: node("Name")},
		{leaf: "Links.Forward", r: 1, expected: node("Links", "Forward")},
		{leaf: "Links.Backward", r: 1, expected: node("Links", "Backward")},
		{leaf: "Links.Backward", r: 0, expected: RootID},
		{leaf: "DocId", r: 0, expected: RootID},
	}
	for _, tc := range tcs {
		anc, err := tree.AncestorAtRepetitionLevel(mustLeaf(t, tree, tc.leaf), tc.r)
		require.NoError(t, err, "%s at %d", tc.leaf, tc.r)
		assert.Equal(t, tc.expected, anc, "%s at %d: got %s", tc.leaf, tc.r, tree.Path(anc))
	}

	// a repeated node is its own ancestor at its own level
	lang := node("Name", "Language")
	anc, err := tree.AncestorAtRepetitionLevel(lang, 2)
	require.NoError(t, err)
	assert.Equal(t, lang, anc)
}

func TestAncestorAtRepetitionLevelInvalid(t *testing.T) {
	tree := mustTree(t, documentSchema)

	tcs := []struct {
		leaf string
		r    int
	}{
		{leaf: "DocId", r: 1},
		{leaf: "Name.Url", r: 2},
		{leaf: "Links.Forward", r: 2},
		{leaf: "Name.Language.Code", r: 3},
	}
	for _, tc := range tcs {
		leaf := mustLeaf(t, tree, tc.leaf)
		_, err := tree.AncestorAtRepetitionLevel(leaf, tc.r)

		var pathErr *InvalidPathError
		require.True(t, errors.As(err, &pathErr), "%s at %d: unexpected error %v", tc.leaf, tc.r, err)
		assert.True(t, pathErr.Path.Equal(tree.Path(leaf)))
		assert.Equal(t, tc.r, pathErr.RepetitionLevel)

		_, err = tree.IsFirstLeafUnderRepetitionBoundary(leaf, tc.r)
		assert.ErrorAs(t, err, &pathErr)
		_, err = tree.IsLastLeafUnderRepetitionBoundary(leaf, tc.r)
		assert.ErrorAs(t, err, &pathErr)
	}
}

func TestOptionalGroupWithRepeatedLeafBoundaries(t *testing.T) {
	tree := mustTree(t, `message m { optional group g { repeated int32 x; } }`)
	x := mustLeaf(t, tree, "g.x")

	anc, err := tree.AncestorAtRepetitionLevel(x, 1)
	require.NoError(t, err)
	assert.Equal(t, x, anc)

	anc, err = tree.AncestorAtRepetitionLevel(x, 0)
	require.NoError(t, err)
	assert.Equal(t, RootID, anc)

	_, err = tree.AncestorAtRepetitionLevel(x, 2)
	assert.Error(t, err)
}

func TestLeafUnderRepetitionBoundary(t *testing.T) {
	tree := mustTree(t, documentSchema)

	tcs := []struct {
		leaf        string
		r           int
		first, last bool
	}{
		{leaf: "DocId", r: 0, first: true},
		{leaf: "Name.Language.Code", r: 2, first: true},
		{leaf: "Name.Language.Country", r: 2, last: true},
		{leaf: "Name.Language.Code", r: 1, first: true},
		{leaf: "Name.Language.Country", r: 1},
		{leaf: "Name.Url", r: 1, last: true},
		{leaf: "Name.Url", r: 0, last: true},
		{leaf: "Links.Forward", r: 1, first: true, last: true},
		{leaf: "Links.Forward", r: 0},
	}
	for _, tc := range tcs {
		leaf := mustLeaf(t, tree, tc.leaf)

		first, err := tree.IsFirstLeafUnderRepetitionBoundary(leaf, tc.r)
		require.NoError(t, err)
		assert.Equal(t, tc.first, first, "first %s at %d", tc.leaf, tc.r)

		last, err := tree.IsLastLeafUnderRepetitionBoundary(leaf, tc.r)
		require.NoError(t, err)
		assert.Equal(t, tc.last, last, "last %s at %d", tc.leaf, tc.r)
	}
}

// Every repeated node has exactly one first and one last leaf among the
// leaves it encloses.
func TestOneFirstAndLastLeafPerRepeatedNode(t *testing.T) {
	for _, text := range []string{
		documentSchema,
		`message m {
		  required int64 id;
		  repeated group events {
		    required binary name;
		    repeated group attrs {
		      required binary key;
		      optional group value { optional int64 i; optional double d; }
		      repeated int32 ints;
		    }
		  }
		  optional group meta { repeated binary tags; optional float ratio; }
		}`,
	} {
		tree := mustTree(t, text)
		for id := NodeID(0); int(id) < tree.NumNodes(); id++ {
			n := tree.Node(id)
			if !n.IsRepeated() {
				continue
			}
			r := n.Path().RepetitionLevel()

			var firsts, lasts int
			for _, leaf := range tree.Leaves() {
				if tree.Path(leaf).RepetitionLevel() < r {
					continue
				}
				anc, err := tree.AncestorAtRepetitionLevel(leaf, r)
				if err != nil || anc != id {
					continue
				}
				if first, _ := tree.IsFirstLeafUnderRepetitionBoundary(leaf, r); first {
					firsts++
				}
				if last, _ := tree.IsLastLeafUnderRepetitionBoundary(leaf, r); last {
					lasts++
				}
			}
			assert.Equal(t, 1, firsts, "first leaves under %s", n.Path())
			assert.Equal(t, 1, lasts, "last leaves under %s", n.Path())
		}
	}
}

func TestRootToLeafPath(t *testing.T) {
	tree := mustTree(t, documentSchema)

	country := mustLeaf(t, tree, "Name.Language.Country")
	chain := tree.RootToLeafPath(country)
	require.Len(t, chain, 4)

	var names []string
	for _, id := range chain[1:] {
		names = append(names, tree.Node(id).Name())
	}
	assert.Equal(t, RootID, chain[0])
	assert.Equal(t, []string{"Name", "Language", "Country"}, names)
	assert.Equal(t, []NodeID{RootID}, tree.RootToLeafPath(RootID))
}
