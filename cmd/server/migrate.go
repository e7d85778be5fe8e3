package main

import (
	"errors"

	"github.com/jrsteele09/go-tenant-auth/internal/logging"
	"github.com/jrsteele09/go-tenant-auth/token/refresh/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the refresh token schema to DATABASE_URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.Setup(c, cmd.ErrOrStderr())

			dsn := c.GetPostgresDSN()
			if dsn == "" {
				return errors.New("DATABASE_URL is not set")
			}
			db, err := postgres.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}
