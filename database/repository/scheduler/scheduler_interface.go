package schedulerRepo

import (
	"context"
	"time"

	"slotly/models"
)

// SchedulerRepository persists the single Schedule document of each vendor.
// Slot writes are conditional updates: they match only when the slot is still free
// and no booked interval in the document overlaps it.
type SchedulerRepository interface {
	GetByVendor(ctx context.Context, vendorID string) (*models.Schedule, error)
	GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error)
	List(ctx context.Context) ([]models.Schedule, error)
	Delete(ctx context.Context, scheduleID string) error

	SaveAvailableDates(ctx context.Context, vendorID string, dates []models.AvailableDate, expectedVersion int) (*models.Schedule, error)
	SetSpecialAvailability(ctx context.Context, vendorID string, isAvailable bool) (*models.Schedule, error)

	BookTimeSlot(ctx context.Context, vendorID string, day time.Time, slot models.TimeSlot, customerID string) error
	PushServiceSlot(ctx context.Context, vendorID string, slot models.ServiceSlot) error
	ReleaseTimeSlot(ctx context.Context, scheduleID string, slot models.BookingSlot) (bool, error)
	PullServiceSlot(ctx context.Context, scheduleID string, slot models.BookingSlot) (bool, error)

	EnsureIndexes(ctx context.Context) error
}
