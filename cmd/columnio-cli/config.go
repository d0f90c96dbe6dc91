package main

import (
	"bytes"
	"flag"
	"io"
	"os"

	"github.com/drone/envsubst"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/grafana/columnio/pkg/columnstore"
	"github.com/grafana/columnio/pkg/parquetio"
	"github.com/grafana/columnio/pkg/util"
)

// Config is the root config for columnio-cli.
type Config struct {
	Store   columnstore.Config `yaml:"store"`
	Parquet parquetio.Config   `yaml:"parquet"`
}

// RegisterFlagsAndApplyDefaults registers the flags.
func (c *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	c.Store.RegisterFlagsAndApplyDefaults(util.PrefixConfig(prefix, "store"), f)
	c.Parquet.RegisterFlagsAndApplyDefaults(util.PrefixConfig(prefix, "parquet"), f)
}

// Validate returns an error if the config is invalid.
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return errors.Wrap(err, "invalid store config")
	}
	if err := c.Parquet.Validate(); err != nil {
		return errors.Wrap(err, "invalid parquet config")
	}
	return nil
}

// loadConfig applies the defaults and overlays the config file, if any.
func loadConfig(configFile string, expandEnv bool) (*Config, error) {
	config := &Config{}
	config.RegisterFlagsAndApplyDefaults("", flag.NewFlagSet("", flag.ContinueOnError))

	if configFile != "" {
		buff, err := os.ReadFile(configFile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read configFile %s", configFile)
		}

		if expandEnv {
			s, err := envsubst.EvalEnv(string(buff))
			if err != nil {
				return nil, errors.Wrapf(err, "failed to expand env vars from configFile %s", configFile)
			}
			buff = []byte(s)
		}

		dec := yaml.NewDecoder(bytes.NewReader(buff))
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "failed to parse configFile %s", configFile)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
