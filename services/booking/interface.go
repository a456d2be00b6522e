package booking

import (
	"context"

	"slotly/models"
)

// BookingWriter owns the booking lifecycle and keeps slot state and customer
// history in step with it.
type BookingWriter interface {
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	Update(ctx context.Context, id string, patch models.BookingUpdate) (*models.Booking, error)
	Cancel(ctx context.Context, id string) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
	Track(ctx context.Context, id, actor string, lng, lat float64) (*models.Booking, error)
	ReconcileHistory(ctx context.Context, customerID string) ([]string, error)
	ReconcileAll(ctx context.Context) (int, error)
}

// CustomerHistory is the denormalized list of booking ids kept on each customer.
type CustomerHistory interface {
	AddBookingRef(ctx context.Context, customerID, bookingID string) error
	RemoveBookingRef(ctx context.Context, customerID, bookingID string) error
	SetBookingHistory(ctx context.Context, customerID string, bookingIDs []string) error
}

// SlotReleaser frees the schedule slot a booking held.
type SlotReleaser interface {
	ReleaseSlot(ctx context.Context, vendorID, scheduleID string, slot models.BookingSlot) error
}

// ReminderScheduler queues the pre-appointment reminder of a booking.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, booking *models.Booking) error
}
