package parquetio

import (
	"flag"
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"

	"github.com/grafana/columnio/pkg/util"
)

// Config for parquet files.
type Config struct {
	Compression    string `yaml:"compression"`
	RowsPerGroup   int64  `yaml:"rows_per_row_group"`
	PageBufferSize int    `yaml:"page_buffer_size"`
}

// RegisterFlagsAndApplyDefaults registers the flags.
func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.Compression, util.PrefixConfig(prefix, "compression"), "snappy", "Parquet page compression: none, snappy, gzip, zstd or lz4.")
	f.Int64Var(&cfg.RowsPerGroup, util.PrefixConfig(prefix, "rows-per-row-group"), 100_000, "Maximum number of records per parquet row group.")
	f.IntVar(&cfg.PageBufferSize, util.PrefixConfig(prefix, "page-buffer-size"), 1<<20, "Size of the buffer holding a column page before it is written.")
}

// Validate returns an error if the config is invalid.
func (cfg *Config) Validate() error {
	if _, err := codec(cfg.Compression); err != nil {
		return err
	}
	if cfg.RowsPerGroup <= 0 {
		return fmt.Errorf("positive rows per row group required")
	}
	if cfg.PageBufferSize <= 0 {
		return fmt.Errorf("positive page buffer size required")
	}
	return nil
}

func codec(name string) (compress.Codec, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return &parquet.Uncompressed, nil
	case "snappy":
		return &parquet.Snappy, nil
	case "gzip":
		return &parquet.Gzip, nil
	case "zstd":
		return &parquet.Zstd, nil
	case "lz4":
		return &parquet.Lz4Raw, nil
	default:
		return nil, fmt.Errorf("unknown parquet compression: %s", name)
	}
}
