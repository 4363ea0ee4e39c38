package cli

import (
	"errors"

	"github.com/pothole-patrol/api-go/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.BackendDriver != "postgres" {
			return errors.New("migrate requires BACKEND_DRIVER=postgres")
		}
		db, err := config.ConnectDatabase(cfg, logger)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		logger.Info("migration complete")
		return nil
	},
}
