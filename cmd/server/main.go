package main

import (
	"context"
	"os"

	"github.com/jrsteele09/go-tenant-auth/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("tenant-auth failed")
		os.Exit(1)
	}
}

type configLoader func() (config.Config, error)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "tenant-auth",
		Short:        "Multi-tenant JWT authentication service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.GetEnv("CONFIG_FILE", ""), "path to a YAML config file (env CONFIG_FILE)")

	loadConfig := func() (config.Config, error) {
		return config.New(configPath)
	}

	root.AddCommand(
		newServeCmd(loadConfig),
		newMigrateCmd(loadConfig),
		newTokenCmd(loadConfig),
	)
	return root
}
