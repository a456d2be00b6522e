package bookingRepo

import (
	"context"

	"slotly/database"
	"slotly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// Update applies the non-nil fields of patch and returns the stored document.
	Update(ctx context.Context, id string, patch models.BookingUpdate) (*models.Booking, error)
	// Cancel moves an active booking to Cancelled. It returns the booking as it was
	// before the change, and changed=false when it was already cancelled.
	Cancel(ctx context.Context, id string) (prev *models.Booking, changed bool, err error)
	// Delete removes the booking and returns the removed document.
	Delete(ctx context.Context, id string) (*models.Booking, error)

	Find(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ActiveIDsByCustomer(ctx context.Context, customerID string) ([]string, error)
	DistinctCustomers(ctx context.Context) ([]string, error)

	// UnsetSchedule clears the schedule reference of every booking that points at scheduleID.
	UnsetSchedule(ctx context.Context, scheduleID string) (int64, error)
	AppendTracking(ctx context.Context, id string, entry models.TrackingEntry) (*models.Booking, error)

	EnsureIndexes(ctx context.Context) error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &mongoBookingRepo{
		coll: db.Collection(database.BookingsCollection),
	}
}
