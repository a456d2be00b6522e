package schedulerRepo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// overlapElem matches an array element whose [startTime, endTime) intersects [start, end).
func overlapElem(start, end time.Time, extra bson.M) bson.M {
	elem := bson.M{
		"startTime": bson.M{"$lt": end},
		"endTime":   bson.M{"$gt": start},
	}
	for k, v := range extra {
		elem[k] = v
	}
	return bson.M{"$elemMatch": elem}
}

// noBookedOverlap asserts that no booked slot of either kind in the document intersects [start, end).
// Special slots are always booked, so every element of serviceSlots counts.
func noBookedOverlap(start, end time.Time) bson.M {
	return bson.M{
		"availableDates.timeSlots":                bson.M{"$not": overlapElem(start, end, bson.M{"isBooked": true})},
		"specialServiceAvailability.serviceSlots": bson.M{"$not": overlapElem(start, end, nil)},
	}
}

// bookTimeSlotFilter matches the vendor's schedule only while the slot is still free and
// does not intersect any booked interval.
func bookTimeSlotFilter(vendorID string, day time.Time, slotID string, start, end time.Time) bson.M {
	filter := bson.M{
		"vendor": vendorID,
		"availableDates": bson.M{"$elemMatch": bson.M{
			"date": day,
			"timeSlots": bson.M{"$elemMatch": bson.M{
				"id":       slotID,
				"isBooked": false,
			}},
		}},
	}
	for k, v := range noBookedOverlap(start, end) {
		filter[k] = v
	}
	return filter
}

// pushServiceSlotFilter matches only while special mode is on and [start, end) is clear.
func pushServiceSlotFilter(vendorID string, start, end time.Time) bson.M {
	filter := bson.M{
		"vendor": vendorID,
		"specialServiceAvailability.isAvailable": true,
	}
	for k, v := range noBookedOverlap(start, end) {
		filter[k] = v
	}
	return filter
}
