package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"slotly/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderFireAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	fireAt, ok := ReminderFireAt(now.Add(3*time.Hour), time.Hour, now)
	assert.True(t, ok)
	assert.Equal(t, now.Add(2*time.Hour), fireAt)

	fireAt, ok = ReminderFireAt(now.Add(30*time.Minute), time.Hour, now)
	assert.True(t, ok, "lead already passed, remind right away")
	assert.Equal(t, now, fireAt)

	_, ok = ReminderFireAt(now, time.Hour, now)
	assert.False(t, ok)
	_, ok = ReminderFireAt(now.Add(-time.Minute), time.Hour, now)
	assert.False(t, ok)
}

func TestReminderTaskRoundTrip(t *testing.T) {
	payload := models.ReminderPayload{
		BookingID: "b1",
		Customer:  "c1",
		Vendor:    "v1",
		StartTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	task, _, err := NewReminderTask(payload, payload.StartTime.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, TypeSendReminder, task.Type())

	got, err := ParseReminderPayload(task)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = ParseReminderPayload(asynq.NewTask(TypeSendReminder, []byte("{")))
	assert.Error(t, err)
}

type recordingEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (e *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)
	e.opts = append(e.opts, opts)
	return &asynq.TaskInfo{}, nil
}

func optionValue(opts []asynq.Option, typ asynq.OptionType) interface{} {
	for _, o := range opts {
		if o.Type() == typ {
			return o.Value()
		}
	}
	return nil
}

func TestAsynqReminderScheduler(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	q := &recordingEnqueuer{}
	s := &AsynqReminderScheduler{Client: q, Lead: time.Hour, Now: func() time.Time { return now }}

	booking := &models.Booking{
		ID:       "b1",
		Customer: "c1",
		Vendor:   "v1",
		Slot:     models.BookingSlot{StartTime: now.Add(4 * time.Hour)},
	}
	require.NoError(t, s.ScheduleReminder(context.Background(), booking))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, "reminder:b1", optionValue(q.opts[0], asynq.TaskIDOpt))
	assert.Equal(t, now.Add(3*time.Hour), optionValue(q.opts[0], asynq.ProcessAtOpt))

	past := &models.Booking{ID: "b2", Slot: models.BookingSlot{StartTime: now.Add(-time.Hour)}}
	require.NoError(t, s.ScheduleReminder(context.Background(), past))
	assert.Len(t, q.tasks, 1, "started slots get no reminder")
}

func TestAsynqReminderSchedulerErrors(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	booking := &models.Booking{ID: "b1", Slot: models.BookingSlot{StartTime: now.Add(4 * time.Hour)}}

	dup := &AsynqReminderScheduler{Client: &recordingEnqueuer{err: asynq.ErrTaskIDConflict}, Lead: time.Hour, Now: func() time.Time { return now }}
	assert.NoError(t, dup.ScheduleReminder(context.Background(), booking))

	down := &AsynqReminderScheduler{Client: &recordingEnqueuer{err: errors.New("redis down")}, Lead: time.Hour, Now: func() time.Time { return now }}
	assert.Error(t, down.ScheduleReminder(context.Background(), booking))
}
