package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (repo *MongoBookingRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on booking ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Unique public lookup code
		{
			Keys:    bson.D{{Key: "confirmation_reference", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_reference"),
		},
		// Webhook lookups resolve bookings by payment reference
		{
			Keys:    bson.D{{Key: "authorization.external_ref", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("external_ref_idx"),
		},
		// Overlap query: offer + date range + state
		{
			Keys:    bson.D{{Key: "offer.offer_id", Value: 1}, {Key: "state", Value: 1}, {Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}},
			Options: options.Index().SetName("offer_state_range_idx"),
		},
	}

	_, err := repo.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
