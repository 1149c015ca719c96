package offerRepo

import (
	"context"

	"gymstay/models"
)

// Repository reads published offers. Offers are owned by gym-management
// tooling; the booking core never writes them.
type Repository interface {
	GetByID(ctx context.Context, offerID string) (*models.Offer, error)
}
