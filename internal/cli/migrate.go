package cli

import (
	"github.com/spf13/cobra"

	"outlay/internal/config"
	"outlay/internal/log"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap(cmd.OutOrStdout(), (*config.Config).ValidateDatabase)
			if err != nil {
				return err
			}
			logger = logger.WithComponent(log.ComponentDatabase)

			if cfg.DataBackend == "memory" {
				logger.Info("Memory backend has no schema, nothing to migrate")
				return nil
			}
			// Opening a SQL backend applies pending migrations.
			db, err := OpenDatabase(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			logger.Info("Migrations applied", "backend", cfg.DataBackend)
			return db.Cleanup()
		},
	}
}
