package bookingRepo

import (
	"gymstay/database"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements Repository backed by MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repository over the "bookings" collection.
func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{
		coll: database.Collection("bookings"),
	}
}
