package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotly/config"
	"slotly/cron"
	"slotly/database"
	"slotly/handlers"
	"slotly/routes"
	"slotly/services/booking"
	"slotly/services/tasks"
	"slotly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var (
		indexes   bool
		withJobs  bool
		healthInt time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the reminder worker and the history sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.GetLogger()
			defer func() { _ = logger.Sync() }()

			if config.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			repos, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer closeDB(logger)

			if indexes {
				if err := ensureIndexes(ctx, repos); err != nil {
					return err
				}
			}

			var (
				reminders    booking.ReminderScheduler
				redisClients []*redis.Client
			)
			if withJobs {
				queue := asynq.NewClient(cron.RedisOpt())
				defer queue.Close()
				reminders = &tasks.AsynqReminderScheduler{Client: queue, Lead: config.AppConfig.ReminderLead}
				redisClients = append(redisClients, utils.NewQueueClient())
			}
			if config.UsesRedisLock() {
				redisClients = append(redisClients, utils.GetLockClient())
			}

			a := newApp(repos, newLocker(), reminders, logger)

			if withJobs {
				reminderLog := logger.Named("reminder")
				worker := cron.NewReminderWorker(a.Bookings, cron.LogNotifier{Logger: reminderLog}, reminderLog)
				if err := worker.Start(); err != nil {
					return err
				}
				defer worker.Shutdown()

				sweep, err := cron.NewReconcileScheduler(config.AppConfig.ReconcileSchedule, a.Bookings, logger.Named("reconcile"))
				if err != nil {
					return err
				}
				sweep.Start()
				defer func() { <-sweep.Stop().Done() }()
			}

			utils.StartHealthMonitor(ctx, healthInt, redisClients, database.MongoClient)

			bundle := handlers.NewHandlerBundle(
				handlers.NewScheduleHandler(a.Store, a.Allocator),
				handlers.NewBookingHandler(a.Bookings),
				&handlers.CatalogHandler{
					Services:  a.Repos.Services,
					Vendors:   a.Repos.Vendors,
					Customers: a.Repos.Customers,
				},
			)
			router := routes.NewRouter(bundle, logger, config.AppConfig.MaxRequestsPerMin)

			srv := &http.Server{
				Addr:    "0.0.0.0:" + config.AppConfig.AppPort,
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Sugar().Infof("Starting server on %s...", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}
			logger.Info("server is shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("server forced to shutdown", zap.Error(err))
				return err
			}
			logger.Info("server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&indexes, "ensure-indexes", true, "create collection indexes on startup")
	cmd.Flags().BoolVar(&withJobs, "jobs", true, "run the reminder worker and the history sweep")
	cmd.Flags().DurationVar(&healthInt, "health-interval", 30*time.Second, "dependency probe interval")
	return cmd
}
