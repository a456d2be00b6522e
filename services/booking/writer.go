package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "slotly/database/repository/booking"
	"slotly/models"
	"slotly/utils"

	"go.uber.org/zap"
)

// DefaultBookingWriter implements BookingWriter. The booking document is the source of
// truth; customer history writes and reminders are best effort and only logged on failure.
type DefaultBookingWriter struct {
	Repo      bookingRepo.BookingRepository
	Customers CustomerHistory
	Slots     SlotReleaser
	Reminders ReminderScheduler
	Logger    *zap.Logger
	Now       func() time.Time
}

func (w *DefaultBookingWriter) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

func (w *DefaultBookingWriter) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}

// Create stores a booking produced by a successful allocation.
func (w *DefaultBookingWriter) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if booking.Status == "" {
		booking.Status = models.BookingStatusScheduled
	}
	if booking.PaymentStatus == "" {
		booking.PaymentStatus = models.PaymentStatusUnpaid
	}
	if booking.Services == nil {
		booking.Services = []string{}
	}

	if err := w.Repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	w.addRef(ctx, booking.Customer, booking.ID)
	if w.Reminders != nil {
		if err := w.Reminders.ScheduleReminder(ctx, booking); err != nil {
			w.logger().Warn("failed to queue booking reminder",
				zap.String("bookingID", booking.ID),
				zap.Error(err),
			)
		}
	}
	return booking, nil
}

func (w *DefaultBookingWriter) Get(ctx context.Context, id string) (*models.Booking, error) {
	return w.Repo.GetByID(ctx, id)
}

func (w *DefaultBookingWriter) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	return w.Repo.Find(ctx, filter)
}

func (w *DefaultBookingWriter) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return w.Repo.ListByCustomer(ctx, customerID)
}

// Update applies a partial update. Setting status to Cancelled goes through the cancel
// path; moving the booking to another customer moves the history reference too.
func (w *DefaultBookingWriter) Update(ctx context.Context, id string, patch models.BookingUpdate) (*models.Booking, error) {
	current, err := w.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil && *patch.Status != models.BookingStatusCancelled && !current.Active() {
		return nil, utils.Validation("booking %s is cancelled and cannot be reopened", id)
	}

	if patch.Status != nil && *patch.Status == models.BookingStatusCancelled {
		if _, err := w.Cancel(ctx, id); err != nil {
			return nil, err
		}
		patch.Status = nil
		current.Status = models.BookingStatusCancelled
	}

	updated, err := w.Repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if patch.Customer != nil && *patch.Customer != current.Customer && current.Active() {
		w.removeRef(ctx, current.Customer, id)
		w.addRef(ctx, updated.Customer, id)
	}
	return updated, nil
}

// Cancel frees the booking's slot, then marks it Cancelled. A failed release leaves the
// booking active so a retry releases again. Cancelling twice is a no-op.
func (w *DefaultBookingWriter) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	current, err := w.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Active() {
		return current, nil
	}

	if err := w.release(ctx, current); err != nil {
		return nil, err
	}

	prev, changed, err := w.Repo.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return prev, nil
	}
	w.removeRef(ctx, prev.Customer, id)

	cancelled := *prev
	cancelled.Status = models.BookingStatusCancelled
	cancelled.UpdatedAt = w.now()
	w.logger().Info("booking cancelled", zap.String("bookingID", id))
	return &cancelled, nil
}

// Delete frees the booking's slot, removes the booking and drops it from the customer's
// history. The document stays in place until the release succeeded.
func (w *DefaultBookingWriter) Delete(ctx context.Context, id string) error {
	current, err := w.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Active() {
		if err := w.release(ctx, current); err != nil {
			return err
		}
	}

	removed, err := w.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	w.removeRef(ctx, removed.Customer, id)
	w.logger().Info("booking deleted", zap.String("bookingID", id))
	return nil
}

func (w *DefaultBookingWriter) release(ctx context.Context, b *models.Booking) error {
	if err := w.Slots.ReleaseSlot(ctx, b.Vendor, b.Schedule, b.Slot); err != nil {
		w.logger().Error("slot not released",
			zap.String("bookingID", b.ID),
			zap.String("slotID", b.Slot.ID),
			zap.Error(err),
		)
		return fmt.Errorf("release slot of booking %s: %w", b.ID, err)
	}
	return nil
}

// Track records a live location of the vendor or the customer on an active booking.
func (w *DefaultBookingWriter) Track(ctx context.Context, id, actor string, lng, lat float64) (*models.Booking, error) {
	if actor != "vendor" && actor != "customer" {
		return nil, utils.Validation("unknown tracking actor %q", actor)
	}
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return nil, utils.Validation("coordinates out of range")
	}

	current, err := w.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Active() {
		return nil, utils.Validation("booking %s is cancelled", id)
	}

	return w.Repo.AppendTracking(ctx, id, models.TrackingEntry{
		Actor:       actor,
		Coordinates: models.NewGeoPoint(lng, lat),
		Timestamp:   w.now(),
	})
}

func (w *DefaultBookingWriter) addRef(ctx context.Context, customerID, bookingID string) {
	if err := w.Customers.AddBookingRef(ctx, customerID, bookingID); err != nil {
		w.logger().Warn("failed to add booking to customer history",
			zap.String("customerID", customerID),
			zap.String("bookingID", bookingID),
			zap.Error(err),
		)
	}
}

func (w *DefaultBookingWriter) removeRef(ctx context.Context, customerID, bookingID string) {
	if err := w.Customers.RemoveBookingRef(ctx, customerID, bookingID); err != nil {
		w.logger().Warn("failed to remove booking from customer history",
			zap.String("customerID", customerID),
			zap.String("bookingID", bookingID),
			zap.Error(err),
		)
	}
}
