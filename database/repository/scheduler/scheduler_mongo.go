package schedulerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotly/database"
	"slotly/models"
	"slotly/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSchedulerRepo implements SchedulerRepository using MongoDB.
type MongoSchedulerRepo struct {
	coll *mongo.Collection
}

// NewMongoSchedulerRepo constructs a new instance of MongoSchedulerRepo.
func NewMongoSchedulerRepo(db *mongo.Database) SchedulerRepository {
	return &MongoSchedulerRepo{
		coll: db.Collection(database.SchedulesCollection),
	}
}

func (repo *MongoSchedulerRepo) findOne(ctx context.Context, filter bson.M, what string) (*models.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var schedule models.Schedule
	if err := repo.coll.FindOne(ctx, filter).Decode(&schedule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFound("schedule not found for %s", what)
		}
		return nil, fmt.Errorf("error fetching schedule for %s: %w", what, err)
	}
	return &schedule, nil
}

// GetByVendor returns the vendor's schedule or ErrNotFound.
func (repo *MongoSchedulerRepo) GetByVendor(ctx context.Context, vendorID string) (*models.Schedule, error) {
	return repo.findOne(ctx, bson.M{"vendor": vendorID}, "vendor "+vendorID)
}

func (repo *MongoSchedulerRepo) GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	return repo.findOne(ctx, bson.M{"id": scheduleID}, "id "+scheduleID)
}

func (repo *MongoSchedulerRepo) List(ctx context.Context) ([]models.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := repo.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing schedules: %w", err)
	}
	defer cursor.Close(ctx)

	schedules := []models.Schedule{}
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("error decoding schedules: %w", err)
	}
	return schedules, nil
}

func (repo *MongoSchedulerRepo) Delete(ctx context.Context, scheduleID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"id": scheduleID})
	if err != nil {
		return fmt.Errorf("error deleting schedule %s: %w", scheduleID, err)
	}
	if res.DeletedCount == 0 {
		return utils.NotFound("schedule %s not found", scheduleID)
	}
	return nil
}

// SaveAvailableDates overwrites the date list of the vendor's schedule, creating the
// document when absent. The write only applies while the stored version still equals
// expectedVersion; a concurrent writer surfaces as ErrSlotConflict.
func (repo *MongoSchedulerRepo) SaveAvailableDates(ctx context.Context, vendorID string, dates []models.AvailableDate, expectedVersion int) (*models.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"vendor": vendorID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"availableDates": dates,
			"updatedAt":      now,
		},
		"$inc": bson.M{"version": 1},
		"$setOnInsert": bson.M{
			"id":                         uuid.New().String(),
			"createdAt":                  now,
			"specialServiceAvailability": models.SpecialServiceAvailability{ServiceSlots: []models.ServiceSlot{}},
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Schedule
	if err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.SlotConflict("schedule of vendor %s was modified concurrently", vendorID)
		}
		return nil, fmt.Errorf("error saving available dates for vendor %s: %w", vendorID, err)
	}
	return &saved, nil
}

// SetSpecialAvailability toggles special mode, creating the schedule when absent.
func (repo *MongoSchedulerRepo) SetSpecialAvailability(ctx context.Context, vendorID string, isAvailable bool) (*models.Schedule, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	filter := bson.M{"vendor": vendorID}
	update := bson.M{
		"$set": bson.M{
			"specialServiceAvailability.isAvailable": isAvailable,
			"updatedAt": now,
		},
		"$inc": bson.M{"version": 1},
		"$setOnInsert": bson.M{
			"id":             uuid.New().String(),
			"createdAt":      now,
			"availableDates": []models.AvailableDate{},
			"specialServiceAvailability.serviceSlots": []models.ServiceSlot{},
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Schedule
	err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if mongo.IsDuplicateKeyError(err) {
		// Two upserts raced on an absent schedule; the loser now finds the winner's document.
		err = repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	}
	if err != nil {
		return nil, fmt.Errorf("error setting special availability for vendor %s: %w", vendorID, err)
	}
	return &saved, nil
}
