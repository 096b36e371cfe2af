package cli

import (
	"github.com/spf13/cobra"

	dbpkg "github.com/BruksfildServices01/barberbook/internal/db"
)

func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			db, err := dbpkg.NewDB(cfg, log)
			if err != nil {
				return err
			}
			defer dbpkg.Close(db) //nolint:errcheck

			if err := dbpkg.Migrate(db); err != nil {
				return err
			}
			log.Info("schema up to date")
			return nil
		},
	}
}
