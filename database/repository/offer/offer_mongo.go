package offerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymstay/database"
	"gymstay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no offer matches the query.
var ErrNotFound = errors.New("offer not found")

// MongoOfferRepo implements Repository backed by MongoDB.
type MongoOfferRepo struct {
	coll *mongo.Collection
}

// NewMongoOfferRepo returns a repository over the "offers" collection.
func NewMongoOfferRepo() *MongoOfferRepo {
	return &MongoOfferRepo{
		coll: database.Collection("offers"),
	}
}

// GetByID retrieves an offer by its ID.
func (repo *MongoOfferRepo) GetByID(ctx context.Context, offerID string) (*models.Offer, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var offer models.Offer
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": offerID}).Decode(&offer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching offer %s: %w", offerID, err)
	}
	return &offer, nil
}
