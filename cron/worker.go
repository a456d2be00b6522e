package cron

import (
	"context"
	"errors"
	"fmt"

	"slotly/config"
	"slotly/models"
	"slotly/services/tasks"
	"slotly/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingGetter loads the booking a reminder refers to.
type BookingGetter interface {
	Get(ctx context.Context, id string) (*models.Booking, error)
}

// Notifier delivers a due booking reminder to its audience.
type Notifier interface {
	NotifyReminder(ctx context.Context, booking *models.Booking) error
}

// LogNotifier is a log-only sink: reminders are written to the log and nothing is
// sent to customers or vendors.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) NotifyReminder(_ context.Context, booking *models.Booking) error {
	n.Logger.Info("booking reminder",
		zap.String("bookingID", booking.ID),
		zap.String("customerID", booking.Customer),
		zap.String("vendorID", booking.Vendor),
		zap.Time("startTime", booking.Slot.StartTime),
	)
	return nil
}

// RedisOpt is the asynq connection to the reminder queue DB.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// ReminderWorker processes queued booking reminders.
type ReminderWorker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewReminderWorker(bookings BookingGetter, notifier Notifier, logger *zap.Logger) *ReminderWorker {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(bookings, notifier, logger))

	return &ReminderWorker{srv: srv, mux: mux}
}

// Start runs the worker in the background.
func (w *ReminderWorker) Start() error {
	return w.srv.Start(w.mux)
}

func (w *ReminderWorker) Shutdown() {
	w.srv.Shutdown()
}

// HandleReminderTask hands the reminder of a still scheduled booking to notifier.
// Reminders for removed or no longer scheduled bookings are dropped.
func HandleReminderTask(bookings BookingGetter, notifier Notifier, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseReminderPayload(task)
		if err != nil {
			logger.Error("dropping reminder", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}

		booking, err := bookings.Get(ctx, p.BookingID)
		if errors.Is(err, utils.ErrNotFound) {
			logger.Debug("reminder for removed booking", zap.String("bookingID", p.BookingID))
			return nil
		}
		if err != nil {
			return err
		}
		if booking.Status != models.BookingStatusScheduled {
			logger.Debug("reminder for inactive booking",
				zap.String("bookingID", p.BookingID),
				zap.String("status", booking.Status),
			)
			return nil
		}

		if err := notifier.NotifyReminder(ctx, booking); err != nil {
			return fmt.Errorf("deliver reminder for booking %s: %w", booking.ID, err)
		}
		return nil
	}
}
