package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotly/models"
	"slotly/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFound("booking %s not found", id)
		}
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// patchSet renders the non-nil fields of patch as a $set document.
func patchSet(patch models.BookingUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if patch.Customer != nil {
		set["customer"] = *patch.Customer
	}
	if patch.Services != nil {
		set["service"] = *patch.Services
	}
	if patch.PaymentType != nil {
		set["payment_type"] = *patch.PaymentType
	}
	if patch.PaymentStatus != nil {
		set["payment_status"] = *patch.PaymentStatus
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	return set
}

func (r *mongoBookingRepo) Update(ctx context.Context, id string, patch models.BookingUpdate) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": patchSet(patch, time.Now().UTC())}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFound("booking %s not found", id)
		}
		return nil, fmt.Errorf("error updating booking %s: %w", id, err)
	}
	return &updated, nil
}

func (r *mongoBookingRepo) Cancel(ctx context.Context, id string) (*models.Booking, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$ne": models.BookingStatusCancelled}}
	update := bson.M{"$set": bson.M{
		"status":    models.BookingStatusCancelled,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var prev models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prev)
	if err == nil {
		return &prev, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("error cancelling booking %s: %w", id, err)
	}

	// Either absent or already cancelled.
	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, false, getErr
	}
	return existing, false, nil
}

func (r *mongoBookingRepo) Delete(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var removed models.Booking
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&removed); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFound("booking %s not found", id)
		}
		return nil, fmt.Errorf("error deleting booking %s: %w", id, err)
	}
	return &removed, nil
}

func (r *mongoBookingRepo) UnsetSchedule(ctx context.Context, scheduleID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"schedule": scheduleID},
		bson.M{
			"$unset": bson.M{"schedule": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("error clearing schedule %s from bookings: %w", scheduleID, err)
	}
	return res.ModifiedCount, nil
}

// AppendTracking records a location update and moves the actor's live position.
func (r *mongoBookingRepo) AppendTracking(ctx context.Context, id string, entry models.TrackingEntry) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	locationField := "tracking.customerLocation"
	if entry.Actor == "vendor" {
		locationField = "tracking.vendorLocation"
	}
	update := bson.M{
		"$push": bson.M{"tracking.history": entry},
		"$set": bson.M{
			locationField: entry.Coordinates,
			"updatedAt":   time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFound("booking %s not found", id)
		}
		return nil, fmt.Errorf("error tracking booking %s: %w", id, err)
	}
	return &updated, nil
}
