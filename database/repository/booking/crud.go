package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"gymstay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new booking document.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.coll.InsertOne(ctxWithTimeout, booking)
	if err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	return repo.findOne(ctx, bson.M{"id": bookingID})
}

// GetByReference retrieves a booking by its public confirmation reference.
func (repo *MongoBookingRepo) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	return repo.findOne(ctx, bson.M{"confirmation_reference": reference})
}

// GetByExternalRef retrieves a booking by its payment authorization reference.
func (repo *MongoBookingRepo) GetByExternalRef(ctx context.Context, externalRef string) (*models.Booking, error) {
	return repo.findOne(ctx, bson.M{"authorization.external_ref": externalRef})
}

func (repo *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.coll.FindOne(ctxWithTimeout, filter).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking: %w", err)
	}
	return &booking, nil
}

// CommitTransition replaces the booking document only when its stored state
// still matches fromState. ModifiedCount 0 means a concurrent transition won.
func (repo *MongoBookingRepo) CommitTransition(ctx context.Context, fromState models.BookingState, booking *models.Booking) (bool, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": booking.ID, "state": fromState}
	res, err := repo.coll.ReplaceOne(ctxWithTimeout, filter, booking)
	if err != nil {
		return false, fmt.Errorf("error committing transition for booking %s: %w", booking.ID, err)
	}
	return res.ModifiedCount == 1, nil
}
