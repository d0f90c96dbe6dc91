package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/columnio/pkg/record"
	"github.com/grafana/columnio/pkg/util/test"
)

const jsonSchema = `
message m {
  required int64 id;
  optional boolean flag;
  optional float ratio;
  optional double score;
  optional int32 small;
  optional binary raw;
  repeated group events {
    required binary name (UTF8);
    repeated int32 ints;
  }
}`

func TestFromJSON(t *testing.T) {
	tree := test.MustTree(t, jsonSchema)

	g, err := record.FromJSON(tree, []byte(`{
		"id": 7,
		"flag": null,
		"ratio": 0.5,
		"score": 2.25,
		"small": -3,
		"raw": "bytes",
		"events": [{"name": "a", "ints": [1, 2]}, {"name": "b", "ints": []}]
	}`))
	require.NoError(t, err)

	expected := record.NewGroup().
		Set("id", int64(7)).
		Set("flag", nil).
		Set("ratio", float32(0.5)).
		Set("score", 2.25).
		Set("small", int32(-3)).
		Set("raw", []byte("bytes")).
		Set("events", record.List(
			record.NewGroup().Set("name", "a").Set("ints", record.List(int32(1), int32(2))),
			record.NewGroup().Set("name", "b").Set("ints", record.List()),
		))
	assert.True(t, record.Equal(expected, g), "got %s", g)

	// Go types follow the columns
	v, _ := g.Get("raw")
	assert.IsType(t, []byte{}, v)
	v, _ = g.Get("small")
	assert.IsType(t, int32(0), v)
	assert.True(t, g.Has("flag"))
	assert.False(t, g.Has("nope"))
}

func TestFromJSONMismatch(t *testing.T) {
	tree := test.MustTree(t, jsonSchema)

	// values that do not fit are kept for the shredder to reject
	g, err := record.FromJSON(tree, []byte(`{"id": "seven", "extra": {"a": 1}, "events": {"name": "x"}}`))
	require.NoError(t, err)

	v, _ := g.Get("id")
	assert.Equal(t, "seven", v)
	v, _ = g.Get("extra")
	assert.Equal(t, map[string]any{"a": float64(1)}, v)
	v, _ = g.Get("events")
	assert.IsType(t, &record.Group{}, v)
}

func TestFromJSONErrors(t *testing.T) {
	tree := test.MustTree(t, jsonSchema)

	for _, data := range []string{``, `[]`, `1`, `{"id": 1`, `{"id": }`} {
		_, err := record.FromJSON(tree, []byte(data))
		assert.Error(t, err, "%q", data)
	}
}

func TestToJSON(t *testing.T) {
	g := record.NewGroup().
		Set("id", int64(7)).
		Set("flag", nil).
		Set("raw", []byte("bytes")).
		Set("events", record.List(record.NewGroup().Set("name", "a").Set("ints", record.List(int32(1))))).
		Set("n", 3)

	data, err := record.ToJSON(g)
	require.NoError(t, err)
	assert.Equal(t, `{"id":7,"flag":null,"raw":"bytes","events":[{"name":"a","ints":[1]}],"n":3}`, string(data))

	_, err = record.ToJSON(record.NewGroup().Set("bad", struct{}{}))
	assert.Error(t, err)
}

func TestJSONRoundTrip(t *testing.T) {
	tree := test.MustTree(t, test.DocumentSchema)

	for _, rec := range test.DocumentRecords() {
		data, err := record.ToJSON(rec)
		require.NoError(t, err)

		back, err := record.FromJSON(tree, data)
		require.NoError(t, err)
		assert.True(t, record.Equal(rec, back), "expected %s\nactual   %s", rec, back)
	}
}
