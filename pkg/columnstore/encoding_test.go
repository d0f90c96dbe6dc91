package columnstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseEncoding(t *testing.T) {
	for _, enc := range SupportedEncoding {
		parsed, err := ParseEncoding(enc.String())
		require.NoError(t, err)
		assert.Equal(t, enc, parsed)
	}

	_, err := ParseEncoding("brotli")
	assert.Error(t, err)
}

func TestEncodingYAML(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte("encoding: lz4-256k\nconcurrency: 3\n"), &cfg))
	assert.Equal(t, EncLZ4_256k, cfg.Encoding)
	assert.Equal(t, 3, cfg.Concurrency)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "encoding: lz4-256k")

	assert.Error(t, yaml.Unmarshal([]byte("encoding: nope\n"), &cfg))
}

func TestCompressRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("column data "), 1000)
	for _, enc := range SupportedEncoding {
		t.Run(enc.String(), func(t *testing.T) {
			// twice to go through pooled readers and writers
			for i := 0; i < 2; i++ {
				compressed, err := compress(enc, src)
				require.NoError(t, err)
				out, err := decompress(enc, compressed)
				require.NoError(t, err)
				assert.Equal(t, src, out)
			}
		})
	}
}
