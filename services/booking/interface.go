package booking

import (
	"context"
	"time"

	bookingRepo "gymstay/database/repository/booking"
	offerRepo "gymstay/database/repository/offer"
	"gymstay/models"
	"gymstay/services/notification"
	"gymstay/services/payment"
	"gymstay/services/tasks"

	"go.uber.org/zap"
)

// BookingService coordinates the booking lifecycle: guest request, host
// decision, card hold, authorization, capture or release, and the
// notifications keyed off each transition.
type BookingService interface {
	RequestBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	QuoteOffer(ctx context.Context, offerID string, durationDays int) (quote *models.Quote, anchor *models.Quote, err error)

	HostAccept(ctx context.Context, bookingID string) (*models.Booking, error)
	HostDecline(ctx context.Context, bookingID, reason string) (*models.Booking, error)

	CreateHold(ctx context.Context, bookingID string) (*models.Booking, string, error)
	RecordAuthorization(ctx context.Context, bookingID, externalRef string) (*models.Booking, error)
	RecordAuthorizationByRef(ctx context.Context, externalRef string) (*models.Booking, error)
	Capture(ctx context.Context, bookingID string) (*models.Booking, error)
	Release(ctx context.Context, bookingID, reason string) (*models.Booking, error)

	// ReleaseExpired is invoked by the expiry worker at the hold's expiry
	// time. It is a no-op when the booking already reached a terminal state.
	ReleaseExpired(ctx context.Context, bookingID string) error

	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	AccessBooking(ctx context.Context, reference, guestEmail string) (*models.Booking, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings  bookingRepo.Repository
	Offers    offerRepo.Repository
	Payments  payment.Authority
	Notifier  notification.Service
	Scheduler tasks.Scheduler
	Logger    *zap.Logger

	// Now is the clock; overridable in tests.
	Now func() time.Time

	locks *bookingLocks
}

// NewDefaultBookingService wires the coordinator with its collaborators.
func NewDefaultBookingService(
	bookings bookingRepo.Repository,
	offers offerRepo.Repository,
	payments payment.Authority,
	notifier notification.Service,
	scheduler tasks.Scheduler,
	logger *zap.Logger,
) *DefaultBookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{
		Bookings:  bookings,
		Offers:    offers,
		Payments:  payments,
		Notifier:  notifier,
		Scheduler: scheduler,
		Logger:    logger,
		Now:       time.Now,
		locks:     newBookingLocks(),
	}
}
