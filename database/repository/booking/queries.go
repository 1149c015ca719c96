package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymstay/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when no booking matches the query.
var ErrNotFound = errors.New("booking not found")

// CountOverlapping counts bookings against the same offer whose date range
// overlaps [start, end) and whose state is one of states. Two half-open
// ranges overlap when each starts before the other ends.
func (repo *MongoBookingRepo) CountOverlapping(ctx context.Context, offerID string, start, end time.Time, states []models.BookingState) (int64, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"offer.offer_id": offerID,
		"state":          bson.M{"$in": states},
		"start_date":     bson.M{"$lt": end},
		"end_date":       bson.M{"$gt": start},
	}
	count, err := repo.coll.CountDocuments(ctxWithTimeout, filter)
	if err != nil {
		return 0, fmt.Errorf("error counting overlapping bookings for offer %s: %w", offerID, err)
	}
	return count, nil
}
