package columnstore

import (
	"flag"
	"fmt"

	"github.com/grafana/columnio/pkg/util"
)

// Config for column store containers.
type Config struct {
	Encoding    Encoding `yaml:"encoding"`
	Concurrency int      `yaml:"concurrency"`
}

// RegisterFlagsAndApplyDefaults registers the flags.
func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	cfg.Encoding = EncZstd
	f.Var(&cfg.Encoding, util.PrefixConfig(prefix, "encoding"), "Page compression. Supported: "+SupportedEncodingString())
	f.IntVar(&cfg.Concurrency, util.PrefixConfig(prefix, "concurrency"), 4, "Number of columns encoded or decoded at the same time.")
}

// Validate returns an error if the config is invalid.
func (cfg *Config) Validate() error {
	if _, err := getReaderPool(cfg.Encoding); err != nil {
		return err
	}
	if cfg.Concurrency <= 0 {
		return fmt.Errorf("positive concurrency required")
	}
	return nil
}
