package columnio

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/columnio/pkg/schema"
)

const documentSchema = `
message Document {
  required int64 DocId;
  optional group Links {
    repeated int64 Backward;
    repeated int64 Forward;
  }
  repeated group Name {
    repeated group Language {
      required binary Code (UTF8);
      optional binary Country (UTF8);
    }
    optional binary Url (UTF8);
  }
}
`

func mustTree(t testing.TB, text string) *Tree {
	t.Helper()

	msg, err := schema.Parse(text)
	require.NoError(t, err)
	tree, err := NewTree(msg)
	require.NoError(t, err)
	return tree
}

func mustLeaf(t testing.TB, tree *Tree, path string) NodeID {
	t.Helper()

	id, ok := tree.LeafByPath(path)
	require.True(t, ok, "no leaf %s", path)
	return id
}

func TestTreeLevels(t *testing.T) {
	tree := mustTree(t, documentSchema)

	type levels struct {
		Path string
		R, D int
		Leaf int
	}
	var actual []levels
	for _, id := range tree.Leaves() {
		n := tree.Node(id)
		actual = append(actual, levels{n.Path().String(), n.Path().RepetitionLevel(), n.Path().DefinitionLevel(), n.LeafIndex()})
	}

	expected := []levels{
		{"DocId", 0, 0, 0},
		{"Links.Backward", 1, 2, 1},
		{"Links.Forward", 1, 2, 2},
		{"Name.Language.Code", 2, 2, 3},
		{"Name.Language.Country", 2, 3, 4},
		{"Name.Url", 1, 2, 5},
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatalf("unexpected leaves (-want +got):\n%s", diff)
	}

	root := tree.Node(RootID)
	assert.Equal(t, "Document", tree.Name())
	assert.Equal(t, NoNode, root.Parent())
	assert.Equal(t, GroupKind, root.Kind())
	assert.True(t, root.IsRepeated())
	assert.Equal(t, 0, root.Path().Len())
	assert.Equal(t, 0, root.Path().RepetitionLevel())
	assert.Equal(t, 0, root.Path().DefinitionLevel())
	assert.Equal(t, -1, root.LeafIndex())
	assert.Equal(t, 10, tree.NumNodes())
	assert.Equal(t, 6, tree.NumLeaves())
}

func TestTreeNodes(t *testing.T) {
	tree := mustTree(t, documentSchema)

	country := mustLeaf(t, tree, "Name.Language.Country")
	n := tree.Node(country)
	assert.Equal(t, "Country", n.Name())
	assert.Equal(t, PrimitiveKind, n.Kind())
	assert.Equal(t, schema.Optional, n.Repetition())
	assert.Equal(t, schema.ByteArray, n.Type())
	assert.Equal(t, schema.String, n.Annotation())
	assert.Nil(t, n.Children())

	lang := n.Parent()
	assert.Equal(t, "Language", tree.Node(lang).Name())
	assert.Len(t, tree.Node(lang).Children(), 2)
	assert.Equal(t, []string{"Name", "Language"}, tree.Path(lang).Names())

	// leaves below a node are contiguous in column order
	name := tree.Node(lang).Parent()
	assert.Equal(t, mustLeaf(t, tree, "Name.Language.Code"), tree.FirstLeaf(name))
	assert.Equal(t, mustLeaf(t, tree, "Name.Url"), tree.LastLeaf(name))
	assert.Equal(t, country, tree.FirstLeaf(country))
	assert.Equal(t, tree.Leaf(0), tree.FirstLeaf(RootID))
	assert.Equal(t, tree.Leaf(tree.NumLeaves()-1), tree.LastLeaf(RootID))

	_, ok := tree.LeafByPath("Name.Language")
	assert.False(t, ok)
}

func TestTreeFromDeclarations(t *testing.T) {
	msg := schema.NewMessage("m",
		schema.Group("g", schema.Optional,
			schema.Primitive("x", schema.Repeated, schema.Int32),
		),
	)
	tree, err := NewTree(msg)
	require.NoError(t, err)

	x := mustLeaf(t, tree, "g.x")
	assert.Equal(t, 1, tree.Path(x).RepetitionLevel())
	assert.Equal(t, 2, tree.Path(x).DefinitionLevel())
	assert.Equal(t, mustTree(t, `message m { optional group g { repeated int32 x; } }`).Fingerprint(), tree.Fingerprint())
}

func TestTreeSchemaErrors(t *testing.T) {
	tcs := []struct {
		name string
		msg  *schema.Message
		path []string
	}{
		{
			name: "nil message",
		},
		{
			name: "no fields",
			msg:  schema.NewMessage("m"),
		},
		{
			name: "empty group",
			msg:  schema.NewMessage("m", schema.Group("g", schema.Optional)),
			path: []string{"g"},
		},
		{
			name: "duplicate sibling",
			msg: schema.NewMessage("m", schema.Group("g", schema.Optional,
				schema.Primitive("a", schema.Required, schema.Int32),
				schema.Primitive("a", schema.Optional, schema.Int64),
			)),
			path: []string{"g", "a"},
		},
		{
			name: "unnamed field",
			msg:  schema.NewMessage("m", schema.Primitive("", schema.Required, schema.Int32)),
		},
		{
			name: "dotted name",
			msg: schema.NewMessage("m",
				schema.Primitive("a.b", schema.Required, schema.Int32),
				schema.Group("a", schema.Optional, schema.Primitive("b", schema.Required, schema.Int32)),
			),
			path: []string{"a.b"},
		},
		{
			name: "invalid repetition",
			msg:  schema.NewMessage("m", schema.Primitive("a", schema.Repetition(9), schema.Int32)),
			path: []string{"a"},
		},
		{
			name: "invalid type",
			msg:  schema.NewMessage("m", schema.Primitive("a", schema.Required, schema.PhysicalType(0))),
			path: []string{"a"},
		},
		{
			name: "primitive with children",
			msg: schema.NewMessage("m", &schema.Field{
				Name:   "a",
				Type:   schema.Int32,
				Fields: []*schema.Field{schema.Primitive("b", schema.Required, schema.Int32)},
			}),
			path: []string{"a"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTree(tc.msg)
			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "unexpected error %v", err)
			assert.Equal(t, tc.path, schemaErr.Path)
		})
	}
}

func TestTreeSameNameInDifferentGroups(t *testing.T) {
	tree := mustTree(t, `message m { optional group a { required int32 x; } optional group b { required int32 x; } }`)
	assert.NotEqual(t, mustLeaf(t, tree, "a.x"), mustLeaf(t, tree, "b.x"))
}

func TestTreeFingerprint(t *testing.T) {
	a := mustTree(t, documentSchema)
	b := mustTree(t, documentSchema)
	c := mustTree(t, `message Document { required int64 DocId; }`)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	// the text form parses back to the same tree
	assert.Equal(t, a.Fingerprint(), mustTree(t, a.String()).Fingerprint())
}

func TestTreeDescribe(t *testing.T) {
	tree := mustTree(t, `message m { required int32 id; optional group g { repeated binary x; } }`)

	expected := `repeated m r=0 d=0
  required id r=0 d=0 int32 leaf=0
  optional g r=0 d=1
    repeated x r=1 d=2 binary leaf=1
`
	assert.Equal(t, expected, tree.Describe())
}

func TestLogicalPath(t *testing.T) {
	tree := mustTree(t, documentSchema)

	code := tree.Path(mustLeaf(t, tree, "Name.Language.Code"))
	lang := tree.Path(tree.Node(mustLeaf(t, tree, "Name.Language.Code")).Parent())
	url := tree.Path(mustLeaf(t, tree, "Name.Url"))

	assert.Equal(t, 3, code.Len())
	assert.True(t, code.HasPrefix(lang))
	assert.True(t, code.HasPrefix(code))
	assert.False(t, lang.HasPrefix(code))
	assert.False(t, url.HasPrefix(lang))
	assert.True(t, code.HasPrefix(tree.Path(RootID)))

	assert.True(t, code.Equal(tree.Path(mustLeaf(t, tree, "Name.Language.Code"))))
	assert.False(t, code.Equal(lang))
	assert.Equal(t, "<root>", tree.Path(RootID).String())
	assert.Equal(t, "Name.Language.Code", code.String())

	// deriving sibling paths does not share storage
	country := tree.Path(mustLeaf(t, tree, "Name.Language.Country"))
	assert.Equal(t, []string{"Name", "Language", "Code"}, code.Names())
	assert.Equal(t, []string{"Name", "Language", "Country"}, country.Names())
}
