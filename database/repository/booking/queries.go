package bookingRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"slotly/database"
	"slotly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// buildMatch renders the plain field filters. Zero-valued fields are skipped.
func buildMatch(f models.BookingFilter) bson.M {
	match := bson.M{}
	if f.Status != "" {
		match["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		match["payment_status"] = f.PaymentStatus
	}
	if f.CustomerID != "" {
		match["customer"] = f.CustomerID
	}
	if f.VendorID != "" {
		match["vendor"] = f.VendorID
	}
	if f.ScheduleID != "" {
		match["schedule"] = f.ScheduleID
	}
	if f.ServiceID != "" {
		match["service"] = f.ServiceID
	}
	if f.SlotStart != nil {
		match["slot.startTime"] = *f.SlotStart
	}
	if f.From != nil || f.To != nil {
		created := bson.M{}
		if f.From != nil {
			created["$gte"] = *f.From
		}
		if f.To != nil {
			created["$lt"] = *f.To
		}
		match["createdAt"] = created
	}
	return match
}

func containsInsensitive(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func lookupStage(from, localField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "id"},
		{Key: "as", Value: as},
	}}}
}

// buildPipeline turns a filter into a single aggregation. Name filters join the
// referenced collections and are matched after the plain filters have narrowed the set.
func buildPipeline(f models.BookingFilter) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildMatch(f)}},
	}

	if f.NeedsLookup() {
		nameMatch := bson.M{}
		var joined bson.A
		if f.CustomerName != "" {
			pipeline = append(pipeline, lookupStage(database.CustomersCollection, "customer", "customerDoc"))
			nameMatch["customerDoc.name"] = containsInsensitive(f.CustomerName)
			joined = append(joined, "customerDoc")
		}
		if f.VendorName != "" {
			pipeline = append(pipeline, lookupStage(database.VendorsCollection, "vendor", "vendorDoc"))
			nameMatch["vendorDoc.name"] = containsInsensitive(f.VendorName)
			joined = append(joined, "vendorDoc")
		}
		if f.ServiceName != "" {
			pipeline = append(pipeline, lookupStage(database.ServicesCollection, "service", "serviceDocs"))
			nameMatch["serviceDocs.name"] = containsInsensitive(f.ServiceName)
			joined = append(joined, "serviceDocs")
		}
		pipeline = append(pipeline,
			bson.D{{Key: "$match", Value: nameMatch}},
			bson.D{{Key: "$unset", Value: joined}},
		)
	}

	return append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}})
}

func (r *mongoBookingRepo) Find(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, buildPipeline(filter))
	if err != nil {
		return nil, fmt.Errorf("aggregation error: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return r.Find(ctx, models.BookingFilter{CustomerID: customerID})
}

// ActiveIDsByCustomer lists the ids of the customer's non-cancelled bookings, oldest first.
func (r *mongoBookingRepo) ActiveIDsByCustomer(ctx context.Context, customerID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"customer": customerID,
		"status":   bson.M{"$ne": models.BookingStatusCancelled},
	}
	opts := options.Find().
		SetProjection(bson.M{"id": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings of customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding booking id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}

func (r *mongoBookingRepo) DistinctCustomers(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	values, err := r.coll.Distinct(ctx, "customer", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error listing booking customers: %w", err)
	}
	customers := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			customers = append(customers, s)
		}
	}
	return customers, nil
}
