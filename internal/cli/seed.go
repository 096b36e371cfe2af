package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/clock"
	dbpkg "github.com/BruksfildServices01/barberbook/internal/db"
	infraRepo "github.com/BruksfildServices01/barberbook/internal/infra/repository"
	"github.com/BruksfildServices01/barberbook/internal/seed"
)

func NewSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo providers, services and clients into an empty database",
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

			res, err := seed.Run(cmd.Context(), infraRepo.NewBookingGormRepository(db), clock.NewSystem(cfg.Timezone).Now())
			if err != nil {
				return err
			}
			if res.Skipped {
				log.Info("seed skipped: database already has providers")
				return nil
			}

			log.Info("seed loaded",
				zap.Int("providers", res.Providers),
				zap.Int("services", res.Services),
				zap.Int("clients", res.Clients),
				zap.Int("bookings", res.Bookings),
			)
			return nil
		},
	}
}
