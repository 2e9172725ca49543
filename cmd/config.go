package main

import (
	"os"
	"strings"

	"github.com/bonder-network/bonder/config"
	"github.com/urfave/cli/v2"
)

const flagSchema = "schema"

func configCmd(cliCtx *cli.Context) error {
	if cliCtx.Bool(flagSchema) {
		schema, err := config.JSONSchema()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(schema, '\n'))
		return err
	}
	// String buffer to concatenate all the default config vars
	defaultConfig := strings.Builder{}
	defaultConfig.WriteString(config.DefaultMandatoryVars)
	if !cliCtx.Bool(config.FlagMinConfig) {
		defaultConfig.WriteString(config.DefaultVars)
		defaultConfig.WriteString(config.DefaultValues)
	}

	_, err := os.Stdout.WriteString(defaultConfig.String())
	return err
}
