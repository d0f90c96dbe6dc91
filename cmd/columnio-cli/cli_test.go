package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/columnio/pkg/columnio"
	"github.com/grafana/columnio/pkg/record"
	"github.com/grafana/columnio/pkg/util/test"
)

const documentRecords = `{"DocId": 10, "Links": {"Forward": [20, 40, 60]}, "Name": [{"Language": [{"Code": "en-us", "Country": "us"}, {"Code": "en"}], "Url": "http://A"}, {"Url": "http://B"}, {"Language": [{"Code": "en-gb", "Country": "gb"}]}]}

{"DocId": 20, "Links": {"Backward": [10, 30], "Forward": [80]}, "Name": [{"Url": "http://C"}]}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testOptions(t *testing.T) (*globalOptions, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &globalOptions{out: out, logger: test.NewTestingLogger(t)}, out
}

func parseOutput(t *testing.T, tree *columnio.Tree, out *bytes.Buffer) []*record.Group {
	t.Helper()

	var recs []*record.Group
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		rec, err := record.FromJSON(tree, scanner.Bytes())
		require.NoError(t, err)
		recs = append(recs, rec)
	}
	require.NoError(t, scanner.Err())
	return recs
}

func TestShredAndAssemble(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "document.schema", test.DocumentSchema)
	recordsFile := writeFile(t, dir, "records.jsonl", documentRecords)
	tree := test.MustTree(t, test.DocumentSchema)

	for _, format := range []string{formatColumns, formatParquet} {
		t.Run(format, func(t *testing.T) {
			out := filepath.Join(dir, "records."+format)

			g, buf := testOptions(t)
			shred := &shredCmd{
				schemaOptions: schemaOptions{SchemaFile: schemaFile},
				Records:       recordsFile,
				Out:           out,
				Format:        format,
			}
			require.NoError(t, shred.Run(g))
			assert.Contains(t, buf.String(), "wrote "+out)

			g, buf = testOptions(t)
			assemble := &assembleCmd{
				schemaOptions: schemaOptions{SchemaFile: schemaFile},
				In:            out,
				Format:        format,
				Prefetch:      2,
			}
			require.NoError(t, assemble.Run(g))

			actual := parseOutput(t, tree, buf)
			expected := test.DocumentRecords()
			require.Len(t, actual, len(expected))
			for i := range expected {
				assert.True(t, record.Equal(expected[i], actual[i]), "expected %s\nactual   %s", expected[i], actual[i])
			}

			g, buf = testOptions(t)
			stats := &statsCmd{
				schemaOptions: schemaOptions{SchemaFile: schemaFile},
				In:            out,
				Format:        format,
				Probe:         "80",
			}
			require.NoError(t, stats.Run(g))
			assert.Contains(t, buf.String(), "Name.Language.Country")
			assert.Contains(t, buf.String(), `"http://A"`)
			assert.Regexp(t, `Links\.Forward\s+\|.*\|\s+maybe\s+\|`, buf.String())
		})
	}
}

func TestAssembleLimit(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "document.schema", test.DocumentSchema)
	recordsFile := writeFile(t, dir, "records.jsonl", documentRecords)
	out := filepath.Join(dir, "records.columns")

	g, _ := testOptions(t)
	require.NoError(t, (&shredCmd{schemaOptions: schemaOptions{SchemaFile: schemaFile}, Records: recordsFile, Out: out, Format: formatColumns, Encoding: "snappy"}).Run(g))

	g, buf := testOptions(t)
	require.NoError(t, (&assembleCmd{schemaOptions: schemaOptions{SchemaFile: schemaFile}, In: out, Format: formatColumns, Limit: 1}).Run(g))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestShredInvalidRecords(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "m.schema", `message m { required int32 id; }`)
	recordsFile := writeFile(t, dir, "records.jsonl", "{\"id\": 1}\n{\"id\": \"x\"}\n{\"id\": 3}\n")
	out := filepath.Join(dir, "out.columns")

	g, _ := testOptions(t)
	cmd := &shredCmd{schemaOptions: schemaOptions{SchemaFile: schemaFile}, Records: recordsFile, Out: out, Format: formatColumns}
	err := cmd.Run(g)
	require.ErrorContains(t, err, "line 2")
	var shapeErr *columnio.RecordShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, []string{"id"}, shapeErr.Path)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "partial output is removed")

	g, buf := testOptions(t)
	cmd.SkipInvalid = true
	require.NoError(t, cmd.Run(g))
	assert.Contains(t, buf.String(), "skipped 1 invalid records")

	g, buf = testOptions(t)
	require.NoError(t, (&assembleCmd{schemaOptions: schemaOptions{SchemaFile: schemaFile}, In: out, Format: formatColumns}).Run(g))
	assert.Equal(t, "{\"id\":1}\n{\"id\":3}\n", buf.String())
}

func TestSchemaCmd(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "document.schema", test.DocumentSchema)

	g, buf := testOptions(t)
	require.NoError(t, (&schemaCmd{schemaOptions: schemaOptions{SchemaFile: schemaFile}}).Run(g))
	assert.Contains(t, buf.String(), "message Document {")
	assert.Contains(t, buf.String(), "fingerprint: ")
	assert.Contains(t, buf.String(), "Name.Language.Country")

	g, buf = testOptions(t)
	require.NoError(t, (&schemaCmd{schemaOptions: schemaOptions{SchemaFile: schemaFile}, Tree: true}).Run(g))
	assert.Contains(t, buf.String(), "optional Country r=2 d=3 binary leaf=4")

	bad := writeFile(t, dir, "bad.schema", `message m { required int32 a; required int64 a; }`)
	g, _ = testOptions(t)
	err := (&schemaCmd{schemaOptions: schemaOptions{SchemaFile: bad}}).Run(g)
	var schemaErr *columnio.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestLevelsCmd(t *testing.T) {
	dir := t.TempDir()
	schemaFile := writeFile(t, dir, "m.schema", `message m { optional group g { repeated int32 x; } }`)
	recordsFile := writeFile(t, dir, "records.jsonl", "{\"g\": {\"x\": [1, 2]}}\n{}\n{\"g\": {}}\n")

	g, buf := testOptions(t)
	require.NoError(t, (&levelsCmd{schemaOptions: schemaOptions{SchemaFile: schemaFile}, Records: recordsFile}).Run(g))

	// one row per triple below the title and header rows
	out := buf.String()
	assert.Contains(t, out, "g.x")
	assert.Equal(t, 2, strings.Count(out, "null"))
	assert.Regexp(t, `\|\s+2\s+\|\s+1\s+\|\s+2\s+\|`, out)
}
