package repository

import (
	"context"

	bookingRepo "slotly/database/repository/booking"
	customerRepo "slotly/database/repository/customer"
	schedulerRepo "slotly/database/repository/scheduler"
	serviceRepo "slotly/database/repository/service"
	vendorRepo "slotly/database/repository/vendor"

	"go.mongodb.org/mongo-driver/mongo"
)

// Re-export the repository interfaces.
type (
	SchedulerRepository = schedulerRepo.SchedulerRepository
	BookingRepository   = bookingRepo.BookingRepository
	CustomerRepository  = customerRepo.CustomerRepository
	ServiceRepository   = serviceRepo.ServiceRepository
	VendorRepository    = vendorRepo.VendorRepository
)

// Repositories groups the Mongo-backed repositories of one database.
type Repositories struct {
	Schedules SchedulerRepository
	Bookings  BookingRepository
	Customers CustomerRepository
	Services  ServiceRepository
	Vendors   VendorRepository
}

func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Schedules: schedulerRepo.NewMongoSchedulerRepo(db),
		Bookings:  bookingRepo.NewMongoBookingRepo(db),
		Customers: customerRepo.NewMongoCustomerRepo(db),
		Services:  serviceRepo.NewMongoServiceRepo(db),
		Vendors:   vendorRepo.NewMongoVendorRepo(db),
	}
}

// EnsureIndexes creates the indexes of every collection, stopping at the first failure.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{
		r.Schedules.EnsureIndexes,
		r.Bookings.EnsureIndexes,
		r.Customers.EnsureIndexes,
		r.Services.EnsureIndexes,
		r.Vendors.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}
