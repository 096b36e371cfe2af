package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberbook/internal/audit"
	"github.com/BruksfildServices01/barberbook/internal/cache"
	"github.com/BruksfildServices01/barberbook/internal/clock"
	"github.com/BruksfildServices01/barberbook/internal/config"
	dbpkg "github.com/BruksfildServices01/barberbook/internal/db"
	domain "github.com/BruksfildServices01/barberbook/internal/domain/booking"
	"github.com/BruksfildServices01/barberbook/internal/infra/gateway"
	"github.com/BruksfildServices01/barberbook/internal/infra/reminder"
	"github.com/BruksfildServices01/barberbook/internal/realtime"
	"github.com/BruksfildServices01/barberbook/internal/routes"
	"github.com/BruksfildServices01/barberbook/internal/storage"
)

const (
	shutdownTimeout = 15 * time.Second

	// paymentDrainTimeout cobre o polling mais longo do gateway.
	paymentDrainTimeout = 5 * time.Minute
)

func NewServeCmd() *cobra.Command {
	var (
		migrate    bool
		withWorker bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := dbpkg.NewDB(cfg, log)
			if err != nil {
				return err
			}
			defer dbpkg.Close(db) //nolint:errcheck

			if migrate {
				if err := dbpkg.Migrate(db); err != nil {
					return err
				}
			}

			return serve(ctx, cfg, log, db, withWorker)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "run migrations before serving")
	cmd.Flags().BoolVar(&withWorker, "worker", true, "also consume reminders in this process (needs Redis)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, db *gorm.DB, withWorker bool) error {
	clk := clock.NewSystem(cfg.Timezone)

	hub := realtime.NewHub(log.Named("realtime"))
	go hub.Run(ctx)

	dispatcher := audit.NewDispatcher(audit.New(db), log.Named("audit"), hub)
	defer dispatcher.Close()

	payGateway, err := gateway.FromConfig(cfg, log.Named("gateway"))
	if err != nil {
		return err
	}

	open, closing, err := cfg.OpeningHours()
	if err != nil {
		return err
	}

	infra := routes.Infra{
		Log:          log,
		Clock:        clk,
		Location:     clk.Location(),
		Hub:          hub,
		Audit:        dispatcher,
		Gateway:      payGateway,
		Cache:        cache.Nop{},
		Photos:       storage.FromConfig(cfg),
		Hours:        domain.OpeningHours{OpenMinute: open, CloseMinute: closing},
		ReminderLead: cfg.ReminderLead(),
	}

	// ======================================================
	// 🔴 REDIS (cache + lembretes), opcional
	// ======================================================
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisCacheDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()

		if err != nil {
			log.Warn("redis unavailable, running without cache and reminders", zap.Error(err))
		} else {
			infra.Cache = cache.NewRedisStore(rdb, "barberbook:", cfg.BoardCacheTTL())

			scheduler := reminder.NewAsynqScheduler(queueOpt(cfg), log.Named("reminders"))
			defer scheduler.Close()
			infra.Reminders = scheduler

			if withWorker {
				srv := reminder.NewServer(queueOpt(cfg), 2, log.Named("reminder-worker"))
				if err := srv.Start(reminder.NewMux(hub, log)); err != nil {
					return err
				}
				defer srv.Shutdown()
			}
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	payments := routes.RegisterRoutes(r, db, cfg, infra)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)

	// Attempts still running must settle before the audit dispatcher closes.
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), paymentDrainTimeout)
	defer cancelDrain()
	return multierr.Append(err, payments.Drain(drainCtx))
}
