package schedulerRepo

import (
	"context"
	"fmt"
	"time"

	"slotly/models"
	"slotly/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookTimeSlot marks a normal slot booked by customerID. It fails with ErrSlotUnavailable
// when the slot is gone, already booked, or now overlaps a booked interval.
func (repo *MongoSchedulerRepo) BookTimeSlot(ctx context.Context, vendorID string, day time.Time, slot models.TimeSlot, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bookTimeSlotFilter(vendorID, day, slot.ID, slot.StartTime, slot.EndTime)
	update := bson.M{
		"$set": bson.M{
			"availableDates.$[d].timeSlots.$[t].isBooked": true,
			"availableDates.$[d].timeSlots.$[t].bookedBy": customerID,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}
	arrayFilters := options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"d.date": day},
			bson.M{"t.id": slot.ID, "t.isBooked": false},
		},
	}
	opts := options.Update().SetArrayFilters(arrayFilters)

	res, err := repo.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("error booking timeslot %s: %w", slot.ID, err)
	}
	if res.MatchedCount == 0 {
		return utils.SlotUnavailable("slot %s-%s is no longer available",
			slot.StartTime.Format(time.RFC3339), slot.EndTime.Format(time.RFC3339))
	}
	return nil
}

// PushServiceSlot appends a booked special slot. It fails with ErrSlotConflict when special
// mode was switched off or a booked interval now overlaps the slot.
func (repo *MongoSchedulerRepo) PushServiceSlot(ctx context.Context, vendorID string, slot models.ServiceSlot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := pushServiceSlotFilter(vendorID, slot.StartTime, slot.EndTime)
	update := bson.M{
		"$push": bson.M{"specialServiceAvailability.serviceSlots": slot},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
		"$inc":  bson.M{"version": 1},
	}

	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error adding service slot: %w", err)
	}
	if res.MatchedCount == 0 {
		return utils.SlotConflict("requested slot %s-%s overlaps an existing booking",
			slot.StartTime.Format(time.RFC3339), slot.EndTime.Format(time.RFC3339))
	}
	return nil
}

// heldBy narrows a slot match to the customer recorded on the booking. Bookings stored
// without a holder match on the slot id alone.
func heldBy(match bson.M, slot models.BookingSlot) bson.M {
	if slot.BookedBy != "" {
		match["bookedBy"] = slot.BookedBy
	}
	return match
}

// heldByElem is the array filter selecting the slot heldBy matched.
func heldByElem(slot models.BookingSlot) bson.M {
	elem := bson.M{"t.id": slot.ID}
	if slot.BookedBy != "" {
		elem["t.bookedBy"] = slot.BookedBy
	}
	return elem
}

// ReleaseTimeSlot frees a normal slot still held by the booking's customer. It reports
// false when there was nothing to release.
func (repo *MongoSchedulerRepo) ReleaseTimeSlot(ctx context.Context, scheduleID string, slot models.BookingSlot) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id": scheduleID,
		"availableDates.timeSlots": bson.M{"$elemMatch": heldBy(bson.M{
			"id":       slot.ID,
			"isBooked": true,
		}, slot)},
	}
	update := bson.M{
		"$set": bson.M{
			"availableDates.$[].timeSlots.$[t].isBooked": false,
			"updatedAt": time.Now().UTC(),
		},
		"$unset": bson.M{"availableDates.$[].timeSlots.$[t].bookedBy": ""},
		"$inc":   bson.M{"version": 1},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{heldByElem(slot)},
	})

	res, err := repo.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return false, fmt.Errorf("error releasing timeslot %s: %w", slot.ID, err)
	}
	return res.ModifiedCount > 0, nil
}

// PullServiceSlot removes a special slot held by the booking's customer so its interval
// becomes bookable again.
func (repo *MongoSchedulerRepo) PullServiceSlot(ctx context.Context, scheduleID string, slot models.BookingSlot) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	slotID := slot.ID
	match := heldBy(bson.M{"id": slotID}, slot)
	filter := bson.M{
		"id": scheduleID,
		"specialServiceAvailability.serviceSlots": bson.M{"$elemMatch": match},
	}
	update := bson.M{
		"$pull": bson.M{"specialServiceAvailability.serviceSlots": match},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
		"$inc":  bson.M{"version": 1},
	}

	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("error removing service slot %s: %w", slotID, err)
	}
	return res.ModifiedCount > 0, nil
}
