package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/eic/datamodel-glue/internal/codegen/common"
	"github.com/eic/datamodel-glue/internal/config"
	"github.com/eic/datamodel-glue/internal/configpaths"
	"github.com/eic/datamodel-glue/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/joho/godotenv"
)

func main() {
	args := os.Args[1:]

	// Dotenv files must be in the environment before kong resolves env tags.
	if err := loadEnvFiles(findFlagValues(args, "--env-file")); err != nil {
		_, _ = os.Stderr.WriteString("failed to load env file: " + err.Error() + "\n")
		os.Exit(2)
	}

	userCfg := findUserConfig(args)
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	version, err := common.GetVersion()
	if err != nil {
		version = common.Version
	}

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name(common.ToolName),
		kong.Description("Generates datamodel_glue.h, the C++ dispatch header mapping collection type names to typed PODIO read/write calls"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	ctx.Bind(logger)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}

func findUserConfig(args []string) string {
	if v := findFlagValues(args, "--config"); len(v) > 0 {
		return v[len(v)-1]
	}
	if v := os.Getenv("DATAMODEL_GLUE_CONFIG"); v != "" {
		return v
	}
	return ""
}

// findFlagValues collects every value given for flag, in both "--flag=v" and
// "--flag v" form. Kong parses the same flags again later; this pre-pass only
// exists for settings that affect how kong itself is set up.
func findFlagValues(args []string, flag string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		if strings.HasPrefix(a, flag+"=") {
			out = append(out, a[len(flag)+1:])
			continue
		}
		if a == flag && i+1 < len(args) {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// loadEnvFiles loads the given dotenv files, or ./.env when none are given and
// it exists. Variables already set in the environment win.
func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{".env"}
	}
	return godotenv.Load(files...)
}
