// Package config declares the command-line surface. Every flag can also be
// set from the environment or from a JSON, YAML or TOML configuration file.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/eic/datamodel-glue/internal/cmd"
	"github.com/eic/datamodel-glue/internal/log"
)

type CLI struct {
	ConfigFile string           `name:"config" help:"Configuration file (json, yaml or toml); searched in the working directory and config home when unset" env:"DATAMODEL_GLUE_CONFIG" placeholder:"PATH"`
	EnvFile    []string         `name:"env-file" help:"Dotenv files loaded into the environment before flags are resolved (default: .env when present)" placeholder:"PATH"`
	Log        log.Options      `embed:"" prefix:"log."`
	Version    kong.VersionFlag `help:"Print version and exit"`

	Generate cmd.Generate      `cmd:"" default:"withargs" help:"Generate the datamodel glue header (default command)"`
	Watch    cmd.Watch         `cmd:"" help:"Regenerate the glue header whenever collection headers change"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
