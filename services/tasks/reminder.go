package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slotly/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds the reminder task of a booking, due at fireAt. The task id is
// derived from the booking so a booking is never reminded twice.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.BookingID),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// ParseReminderPayload decodes the body of a reminder task.
func ParseReminderPayload(task *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reminder payload: %w", err)
	}
	return p, nil
}

// ReminderFireAt is lead before the slot starts, or now if that moment has passed.
// ok is false when the slot itself has already started.
func ReminderFireAt(start time.Time, lead time.Duration, now time.Time) (time.Time, bool) {
	if !start.After(now) {
		return time.Time{}, false
	}
	fireAt := start.Add(-lead)
	if fireAt.Before(now) {
		return now, true
	}
	return fireAt, true
}

// Enqueuer is the part of *asynq.Client used to queue tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqReminderScheduler queues booking reminders on the asynq Redis queue.
type AsynqReminderScheduler struct {
	Client Enqueuer
	Lead   time.Duration
	Now    func() time.Time
}

func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	fireAt, ok := ReminderFireAt(booking.Slot.StartTime, s.Lead, now)
	if !ok {
		return nil
	}

	task, opts, err := NewReminderTask(models.ReminderPayload{
		BookingID: booking.ID,
		Customer:  booking.Customer,
		Vendor:    booking.Vendor,
		StartTime: booking.Slot.StartTime,
	}, fireAt)
	if err != nil {
		return err
	}

	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue reminder for booking %s: %w", booking.ID, err)
	}
	return nil
}
