package customerRepo

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

// CustomerRepository defines methods for customer data access.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	// AddBookingRef adds a booking id to the customer's history if not present.
	AddBookingRef(ctx context.Context, customerID, bookingID string) error
	// RemoveBookingRef pulls a booking id from the customer's history.
	RemoveBookingRef(ctx context.Context, customerID, bookingID string) error
	// SetBookingHistory overwrites the history with the given ids.
	SetBookingHistory(ctx context.Context, customerID string, bookingIDs []string) error
	EnsureIndexes(ctx context.Context) error
}

// MongoCustomerRepo implements CustomerRepository using MongoDB.
type MongoCustomerRepo struct {
	coll *mongo.Collection
}

func NewMongoCustomerRepo(db *mongo.Database) CustomerRepository {
	return &MongoCustomerRepo{coll: db.Collection(database.CustomersCollection)}
}

func (r *MongoCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if customer.BookingHistory == nil {
		customer.BookingHistory = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, customer); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *MongoCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var customer models.Customer
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&customer); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFound("customer %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch customer %s: %w", id, err)
	}
	return &customer, nil
}

func (r *MongoCustomerRepo) AddBookingRef(ctx context.Context, customerID, bookingID string) error {
	return r.updateHistory(ctx, customerID, bson.M{"$addToSet": bson.M{"booking_history": bookingID}})
}

func (r *MongoCustomerRepo) RemoveBookingRef(ctx context.Context, customerID, bookingID string) error {
	return r.updateHistory(ctx, customerID, bson.M{"$pull": bson.M{"booking_history": bookingID}})
}

func (r *MongoCustomerRepo) SetBookingHistory(ctx context.Context, customerID string, bookingIDs []string) error {
	if bookingIDs == nil {
		bookingIDs = []string{}
	}
	return r.updateHistory(ctx, customerID, bson.M{"$set": bson.M{"booking_history": bookingIDs}})
}

func (r *MongoCustomerRepo) updateHistory(ctx context.Context, customerID string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": customerID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking history of customer %s: %w", customerID, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("customer %s not found", customerID)
	}
	return nil
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (r *MongoCustomerRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create customer indexes: %w", err)
	}
	return nil
}
