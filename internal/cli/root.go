package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barberbook/internal/config"
	"github.com/BruksfildServices01/barberbook/internal/logger"
)

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "barberbook",
		Short:         "Barbershop booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewWorkerCmd())
	return cmd
}

// bootstrap loads config and the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
