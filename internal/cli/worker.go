package cli

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/barberbook/internal/config"
	"github.com/BruksfildServices01/barberbook/internal/infra/reminder"
)

func NewWorkerCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume due booking reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			if cfg.RedisAddr == "" {
				return fmt.Errorf("worker: REDIS_ADDR is required")
			}

			// sem hub aqui: o lembrete só vai para o log
			srv := reminder.NewServer(queueOpt(cfg), concurrency, log)
			return srv.Run(reminder.NewMux(nil, log))
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 5, "reminders handled in parallel")
	return cmd
}

func queueOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
}
