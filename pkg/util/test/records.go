package test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/record"
	"github.com/grafana/columnio/pkg/schema"
)

// DocumentSchema is the Document schema of the Dremel paper.
const DocumentSchema = `
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

// MustTree parses text and builds its column tree.
func MustTree(t testing.TB, text string) *columnio.Tree {
	t.Helper()

	msg, err := schema.Parse(text)
	require.NoError(t, err)
	tree, err := columnio.NewTree(msg)
	require.NoError(t, err)
	return tree
}

// DocumentRecords returns the two sample records of the Dremel paper.
func DocumentRecords() []*record.Group {
	r1 := record.NewGroup().
		Set("DocId", int64(10)).
		Set("Links", record.NewGroup().
			Set("Forward", record.List(int64(20), int64(40), int64(60)))).
		Set("Name", record.List(
			record.NewGroup().
				Set("Language", record.List(
					record.NewGroup().Set("Code", "en-us").Set("Country", "us"),
					record.NewGroup().Set("Code", "en"),
				)).
				Set("Url", "http://A"),
			record.NewGroup().Set("Url", "http://B"),
			record.NewGroup().
				Set("Language", record.List(
					record.NewGroup().Set("Code", "en-gb").Set("Country", "gb"),
				)),
		))

	r2 := record.NewGroup().
		Set("DocId", int64(20)).
		Set("Links", record.NewGroup().
			Set("Backward", record.List(int64(10), int64(30))).
			Set("Forward", record.List(int64(80)))).
		Set("Name", record.List(
			record.NewGroup().Set("Url", "http://C"),
		))

	return []*record.Group{r1, r2}
}

// MakeRecord returns a random record matching tree. Optional fields are
// left out and lists are left empty now and then.
func MakeRecord(tree *columnio.Tree, rnd *rand.Rand) *record.Group {
	return makeGroup(tree, columnio.RootID, rnd)
}

func makeGroup(tree *columnio.Tree, id columnio.NodeID, rnd *rand.Rand) *record.Group {
	g := record.NewGroup()
	for _, c := range tree.Node(id).Children() {
		n := tree.Node(c)
		switch n.Repetition() {
		case schema.Required:
			g.Set(n.Name(), makeValue(tree, c, rnd))
		case schema.Optional:
			// occasionally leave it out
			if rnd.Intn(3) > 0 {
				g.Set(n.Name(), makeValue(tree, c, rnd))
			}
		case schema.Repeated:
			list := []any{}
			for i := rnd.Intn(4); i > 0; i-- {
				list = append(list, makeValue(tree, c, rnd))
			}
			g.Set(n.Name(), list)
		}
	}
	return g
}

// makeValue returns values in the Go types the assembler produces.
func makeValue(tree *columnio.Tree, id columnio.NodeID, rnd *rand.Rand) any {
	n := tree.Node(id)
	if n.Kind() == columnio.GroupKind {
		return makeGroup(tree, id, rnd)
	}

	switch n.Type() {
	case schema.Boolean:
		return rnd.Intn(2) == 0
	case schema.Int32:
		return rnd.Int31() - rnd.Int31()
	case schema.Int64:
		return rnd.Int63() - rnd.Int63()
	case schema.Float:
		return rnd.Float32()
	case schema.Double:
		return rnd.NormFloat64()
	case schema.ByteArray:
		b := make([]byte, rnd.Intn(12))
		rnd.Read(b)
		if n.Annotation() == schema.String {
			for i := range b {
				b[i] = 'a' + b[i]%26
			}
			return string(b)
		}
		return b
	}
	return nil
}
