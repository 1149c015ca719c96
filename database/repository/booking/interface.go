package bookingRepo

import (
	"context"
	"time"

	"gymstay/models"
)

// Repository is the narrow persistence interface for booking records. The
// lifecycle coordinator mutates bookings only through CommitTransition so
// every state change is guarded by the expected prior state.
type Repository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)
	GetByExternalRef(ctx context.Context, externalRef string) (*models.Booking, error)

	// CommitTransition persists booking only if the stored record is still
	// in fromState. It returns false when a concurrent transition won.
	CommitTransition(ctx context.Context, fromState models.BookingState, booking *models.Booking) (bool, error)

	// CountOverlapping counts bookings for the offer whose [start, end)
	// range overlaps the given one and whose state is in states.
	CountOverlapping(ctx context.Context, offerID string, start, end time.Time, states []models.BookingState) (int64, error)
}
