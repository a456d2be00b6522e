package cmd

import (
	"context"
	"fmt"
	"time"

	"slotly/config"
	"slotly/database"
	"slotly/database/repository"
	"slotly/services/booking"
	"slotly/services/schedule"
	"slotly/utils"

	"go.uber.org/zap"
)

// app is the wired service graph shared by the commands.
type app struct {
	Repos     *repository.Repositories
	Store     *schedule.DefaultSlotStore
	Allocator *schedule.DefaultSlotAllocator
	Bookings  *booking.DefaultBookingWriter
	Logger    *zap.Logger
}

func connectDB(ctx context.Context) (*repository.Repositories, error) {
	if err := database.InitDB(ctx); err != nil {
		return nil, err
	}
	return repository.NewMongoRepositories(database.Database()), nil
}

func newLocker() schedule.Locker {
	if config.UsesRedisLock() {
		return &schedule.RedisLocker{
			Client: utils.GetLockClient(),
			TTL:    config.AppConfig.LockTTL,
			Prefix: "slotly:lock:",
		}
	}
	return schedule.NewKeyedMutex()
}

// newApp builds the services over repos. reminders may be nil.
func newApp(repos *repository.Repositories, locker schedule.Locker, reminders booking.ReminderScheduler, logger *zap.Logger) *app {
	store := &schedule.DefaultSlotStore{
		Repo:     repos.Schedules,
		Bookings: repos.Bookings,
		Locker:   locker,
		Logger:   logger.Named("schedule"),
	}
	writer := &booking.DefaultBookingWriter{
		Repo:      repos.Bookings,
		Customers: repos.Customers,
		Slots:     store,
		Reminders: reminders,
		Logger:    logger.Named("booking"),
	}
	allocator := &schedule.DefaultSlotAllocator{
		Repo:     repos.Schedules,
		Services: repos.Services,
		Bookings: writer,
		Locker:   locker,
		Logger:   logger.Named("allocator"),
	}
	return &app{
		Repos:     repos,
		Store:     store,
		Allocator: allocator,
		Bookings:  writer,
		Logger:    logger,
	}
}

func closeDB(logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Close(ctx); err != nil {
		logger.Warn("failed to disconnect MongoDB", zap.Error(err))
	}
}

func ensureIndexes(ctx context.Context, repos *repository.Repositories) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := repos.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}
