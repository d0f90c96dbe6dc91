package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	kitlog "github.com/go-kit/log"
	dslog "github.com/grafana/dskit/log"
	"github.com/pkg/errors"

	"github.com/grafana/columnio/pkg/util/log"
)

type globalOptions struct {
	ConfigFile      string `name:"config.file" type:"path" help:"YAML configuration file to load."`
	ConfigExpandEnv bool   `name:"config.expand-env" help:"Expand environment variables in the configuration file."`
	LogLevel        string `name:"log.level" default:"info" enum:"debug,info,warn,error" help:"Only log messages with the given severity or above."`
	LogFormat       string `name:"log.format" default:"logfmt" enum:"logfmt,json" help:"Output log messages in the given format."`

	out    io.Writer
	logger kitlog.Logger
}

var cli struct {
	globalOptions

	Schema   schemaCmd   `cmd:"" help:"Parse a schema and print its leaf columns with their levels"`
	Levels   levelsCmd   `cmd:"" help:"Shred records and print the triples of every leaf column"`
	Shred    shredCmd    `cmd:"" help:"Shred JSON records into a column container or a parquet file"`
	Assemble assembleCmd `cmd:"" help:"Assemble JSON records from a column container or a parquet file"`
	Stats    statsCmd    `cmd:"" help:"Print per column statistics of a column container or a parquet file"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("columnio-cli"),
		kong.Description("Flatten nested records into columns and back"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	cli.out = os.Stdout
	err := ctx.Run(&cli.globalOptions)
	ctx.FatalIfErrorf(err)
}

// setup loads the configuration and builds the logger. Commands call it
// first so that tests can run them without going through kong.
func (g *globalOptions) setup() (*Config, error) {
	if g.out == nil {
		g.out = os.Stdout
	}

	if g.logger == nil {
		var lvl dslog.Level
		if err := lvl.Set(g.LogLevel); err != nil {
			return nil, errors.Wrap(err, "invalid log level")
		}
		format := g.LogFormat
		if format == "" {
			format = "logfmt"
		}
		g.logger = log.NewLogger(os.Stderr, format, lvl)
	}

	return loadConfig(g.ConfigFile, g.ConfigExpandEnv)
}
