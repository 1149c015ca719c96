package booking

import (
	"context"
	"fmt"
	"strings"

	"gymstay/config"
	bookingRepo "gymstay/database/repository/booking"
	"gymstay/models"
	"gymstay/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Authorization status values stored on the booking's reference.
const (
	authStatusCreated    = "created"
	authStatusAuthorized = "authorized"
	authStatusCaptured   = "captured"
	authStatusReleased   = "released"
	authStatusExpired    = "expired"
)

// RequestBooking validates the guest request, prices the stay and persists
// the booking in REQUESTED. Nothing is persisted on any validation failure.
func (s *DefaultBookingService) RequestBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if err := validateGuest(req.Guest); err != nil {
		return nil, err
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, newValidationError("dates", "startDate and endDate are required")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, newValidationError("dates", "endDate must be after startDate")
	}

	offer, err := s.Offers.GetByID(ctx, req.OfferID)
	if err != nil {
		return nil, err
	}

	durationDays := int(req.EndDate.Sub(req.StartDate).Hours() / 24)

	if offer.HasBlackout(req.StartDate, req.EndDate) {
		return nil, newValidationError("dates", "the selected range includes blackout dates")
	}

	if durationDays < offer.MinStayDays {
		// Still price the minimum duration so the caller can show the
		// anchor price alongside the rejection.
		anchor, priceErr := PriceFor(offer.MinStayDays, offer.Kind, offer.Rates, offer.Currency)
		if priceErr != nil {
			anchor = nil
		}
		return nil, &MinimumStayNotMetError{
			MinStayDays:   offer.MinStayDays,
			RequestedDays: durationDays,
			Anchor:        anchor,
		}
	}

	overlapping, err := s.Bookings.CountOverlapping(ctx, offer.ID, req.StartDate, req.EndDate, activeStates)
	if err != nil {
		return nil, fmt.Errorf("failed to check date availability: %w", err)
	}
	if overlapping > 0 {
		return nil, newValidationError("dates", "the selected range overlaps an existing booking for this offer")
	}

	quote, err := PriceFor(durationDays, offer.Kind, offer.Rates, offer.Currency)
	if err != nil {
		return nil, err
	}

	reference, err := generateConfirmationReference()
	if err != nil {
		return nil, err
	}
	pin, err := generateConfirmationPIN()
	if err != nil {
		return nil, err
	}

	now := s.Now()
	b := &models.Booking{
		ID:                    uuid.New().String(),
		ConfirmationReference: reference,
		ConfirmationPIN:       pin,
		Offer: models.OfferSnapshot{
			OfferID:     offer.ID,
			GymID:       offer.GymID,
			Title:       offer.Title,
			Kind:        offer.Kind,
			Rates:       offer.Rates,
			Currency:    offer.Currency,
			MinStayDays: offer.MinStayDays,
			BookingMode: offer.BookingMode,
			Amenities:   models.ResolveAmenities(offer.Amenities),
			HostEmail:   offer.HostEmail,
		},
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Guest:       req.Guest,
		Notes:       req.Notes,
		TotalAmount: quote.Amount,
		Currency:    quote.Currency,
		BillingUnit: quote.Unit,
		PriceLabel:  quote.Label,
		State:       models.StateRequested,
		Transitions: []models.Transition{{To: models.StateRequested, Event: "request_booking", At: now}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	s.notify(ctx, models.NotifyGuestRequested, b, b.Guest.Email, "")
	if b.Offer.BookingMode == models.ModeRequestToBook {
		s.notify(ctx, models.NotifyHostNewRequest, b, b.Offer.HostEmail, "")
	}

	s.Logger.Info("booking requested",
		zap.String("bookingId", b.ID),
		zap.String("offerId", offer.ID),
		zap.Float64("totalAmount", b.TotalAmount))
	return b, nil
}

// QuoteOffer prices a duration against an offer. When the duration is below
// the minimum stay, quote is nil and anchor carries the price at the
// minimum duration for display.
func (s *DefaultBookingService) QuoteOffer(ctx context.Context, offerID string, durationDays int) (*models.Quote, *models.Quote, error) {
	offer, err := s.Offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, nil, err
	}
	if durationDays < 1 {
		return nil, nil, newValidationError("days", "must be at least 1")
	}
	if durationDays < offer.MinStayDays {
		anchor, err := PriceFor(offer.MinStayDays, offer.Kind, offer.Rates, offer.Currency)
		if err != nil {
			return nil, nil, err
		}
		return nil, anchor, nil
	}
	quote, err := PriceFor(durationDays, offer.Kind, offer.Rates, offer.Currency)
	if err != nil {
		return nil, nil, err
	}
	return quote, nil, nil
}

// HostAccept moves a request-to-book booking from REQUESTED to
// HOST_ACCEPTED.
func (s *DefaultBookingService) HostAccept(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := s.transitionLocal(ctx, bookingID, EventHostAccept, func(b *models.Booking) error {
		if b.Offer.BookingMode != models.ModeRequestToBook {
			return &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: EventHostAccept}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, models.NotifyGuestAccepted, b, b.Guest.Email, "")
	return b, nil
}

// HostDecline rejects a request. No authorization exists yet, so there is
// nothing to release; the guest is told why.
func (s *DefaultBookingService) HostDecline(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	b, err := s.transitionLocal(ctx, bookingID, EventHostDecline, func(b *models.Booking) error {
		if b.Offer.BookingMode != models.ModeRequestToBook {
			return &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: EventHostDecline}
		}
		b.DeclineReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, models.NotifyGuestDeclined, b, b.Guest.Email, reason)
	return b, nil
}

// CreateHold asks the payment authority to hold TotalAmount. On processor
// failure the booking stays in its prior state and the call is retryable:
// the idempotency key makes a second attempt return the same hold.
func (s *DefaultBookingService) CreateHold(ctx context.Context, bookingID string) (*models.Booking, string, error) {
	key := payment.IdempotencyKey(bookingID, "create_hold")

	// Validate under the lock, then let go before the processor call.
	release := s.locks.acquire(bookingID)
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		release()
		return nil, "", err
	}
	if err := s.guardCreateHold(b); err != nil {
		release()
		return nil, "", err
	}
	if err := s.ensureDatesAvailable(ctx, b); err != nil {
		release()
		return nil, "", err
	}
	amount, currency := b.TotalAmount, b.Currency
	release()

	hold, err := s.Payments.CreateHold(ctx, amount, currency, key)
	if err != nil {
		return nil, "", err
	}

	// Commit with an optimistic re-check: the state must not have moved
	// and the dates must still be free after the processor call.
	release = s.locks.acquire(bookingID)

	b, err = s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		release()
		return nil, "", err
	}
	if b.State == models.StateHoldCreated && b.Authorization != nil && b.Authorization.ExternalRef == hold.ExternalRef {
		// A concurrent retry already committed this same hold.
		release()
		return b, hold.ClientSecret, nil
	}
	if err := s.guardCreateHold(b); err != nil {
		release()
		return nil, "", err
	}
	if err := s.ensureDatesAvailable(ctx, b); err != nil {
		release()
		s.surrenderHold(ctx, bookingID, hold.ExternalRef)
		return nil, "", err
	}

	from := b.State
	now := s.Now()
	b.Authorization = &models.AuthorizationRef{
		ExternalRef: hold.ExternalRef,
		Status:      authStatusCreated,
		CreatedAt:   now,
		ExpiresAt:   hold.ExpiresAt,
	}
	b.RecordTransition(models.StateHoldCreated, EventCreateHold, now)

	committed, err := s.Bookings.CommitTransition(ctx, from, b)
	release()
	if err != nil {
		return nil, "", err
	}
	if !committed {
		current, loadErr := s.Bookings.GetByID(ctx, bookingID)
		if loadErr == nil && current.State == models.StateHoldCreated &&
			current.Authorization != nil && current.Authorization.ExternalRef == hold.ExternalRef {
			return current, hold.ClientSecret, nil
		}
		return nil, "", &IllegalTransitionError{BookingID: bookingID, From: stateOf(current), Event: EventCreateHold}
	}

	if s.Scheduler != nil {
		if err := s.Scheduler.ScheduleHoldExpiry(ctx, b.ID, hold.ExpiresAt); err != nil {
			// Capture re-checks expiry, so a lost watch degrades, not breaks.
			s.Logger.Warn("failed to schedule hold expiry",
				zap.String("bookingId", b.ID), zap.Error(err))
		}
	}

	s.Logger.Info("hold created",
		zap.String("bookingId", b.ID),
		zap.String("externalRef", hold.ExternalRef))
	return b, hold.ClientSecret, nil
}

func (s *DefaultBookingService) guardCreateHold(b *models.Booking) error {
	if _, ok := nextState(b.State, EventCreateHold); !ok {
		return &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: EventCreateHold}
	}
	if b.State == models.StateRequested && b.Offer.BookingMode != models.ModeInstant {
		// request_to_book bookings need the host decision first.
		return &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: EventCreateHold}
	}
	return nil
}

// ensureDatesAvailable re-runs the overlap rule for a booking that is about
// to hold its dates. A REQUESTED booking does not block dates, so two
// requests for the same range can coexist; only the first to reach an
// active state wins.
func (s *DefaultBookingService) ensureDatesAvailable(ctx context.Context, b *models.Booking) error {
	overlapping, err := s.Bookings.CountOverlapping(ctx, b.Offer.OfferID, b.StartDate, b.EndDate, activeStates)
	if err != nil {
		return fmt.Errorf("failed to check date availability: %w", err)
	}
	if overlapping > 0 {
		return newValidationError("dates", "the selected range was taken by another booking")
	}
	return nil
}

// surrenderHold cancels a processor hold that lost the date race before it
// was committed. Failures are logged only; an uncancelled hold lapses at
// its expiry without ever charging.
func (s *DefaultBookingService) surrenderHold(ctx context.Context, bookingID, externalRef string) {
	key := payment.IdempotencyKey(bookingID, "release")
	if _, err := s.Payments.Release(ctx, externalRef, key); err != nil {
		s.Logger.Warn("failed to release surrendered hold",
			zap.String("bookingId", bookingID),
			zap.String("externalRef", externalRef),
			zap.Error(err))
	}
}

// RecordAuthorization marks the hold authorized once the guest completed
// authentication. Redirect and webhook can both deliver this event, so a
// duplicate call with the same reference is a no-op success and produces
// no second notification.
func (s *DefaultBookingService) RecordAuthorization(ctx context.Context, bookingID, externalRef string) (*models.Booking, error) {
	release := s.locks.acquire(bookingID)

	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		release()
		return nil, err
	}

	if b.State == models.StateAuthorized && b.Authorization != nil && b.Authorization.ExternalRef == externalRef {
		release()
		return b, nil
	}

	if _, ok := nextState(b.State, EventAuthorize); !ok {
		release()
		return nil, &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: EventAuthorize}
	}
	if b.Authorization == nil || b.Authorization.ExternalRef != externalRef {
		release()
		return nil, newValidationError("externalPaymentRef", "does not match the booking's payment authorization")
	}

	from := b.State
	b.Authorization.Status = authStatusAuthorized
	b.RecordTransition(models.StateAuthorized, EventAuthorize, s.Now())

	committed, err := s.Bookings.CommitTransition(ctx, from, b)
	release()
	if err != nil {
		return nil, err
	}
	if !committed {
		current, loadErr := s.Bookings.GetByID(ctx, bookingID)
		if loadErr == nil && current.State == models.StateAuthorized &&
			current.Authorization != nil && current.Authorization.ExternalRef == externalRef {
			return current, nil
		}
		return nil, &IllegalTransitionError{BookingID: bookingID, From: stateOf(current), Event: EventAuthorize}
	}

	s.notify(ctx, models.NotifyOperatorAuthorized, b, s.operatorEmail(), "")
	s.notify(ctx, models.NotifyGuestAuthorized, b, b.Guest.Email, "")

	s.Logger.Info("authorization recorded",
		zap.String("bookingId", b.ID),
		zap.String("externalRef", externalRef))
	return b, nil
}

// RecordAuthorizationByRef resolves the booking from the processor's
// payment reference. Used by the webhook path.
func (s *DefaultBookingService) RecordAuthorizationByRef(ctx context.Context, externalRef string) (*models.Booking, error) {
	b, err := s.Bookings.GetByExternalRef(ctx, externalRef)
	if err != nil {
		return nil, err
	}
	return s.RecordAuthorization(ctx, b.ID, externalRef)
}

// Capture converts the hold into a charge and confirms the booking.
// Calling it again once CONFIRMED is a no-op, never a second charge. An
// expired hold is proactively released instead of attempting a capture
// that the processor would reject.
func (s *DefaultBookingService) Capture(ctx context.Context, bookingID string) (*models.Booking, error) {
	key := payment.IdempotencyKey(bookingID, "capture")

	release := s.locks.acquire(bookingID)
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		release()
		return nil, err
	}
	if b.State == models.StateConfirmed {
		release()
		return b, nil
	}
	if _, ok := nextState(b.State, EventCapture); !ok {
		release()
		return nil, &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: EventCapture}
	}
	if b.Authorization == nil {
		release()
		return nil, fmt.Errorf("booking %s is %s but carries no payment authorization", b.ID, b.State)
	}
	expired := s.Now().After(b.Authorization.ExpiresAt)
	externalRef := b.Authorization.ExternalRef
	release()

	if expired {
		expiredAt := b.Authorization.ExpiresAt
		if _, relErr := s.releaseInternal(ctx, bookingID, EventExpireRelease, "authorization expired"); relErr != nil {
			s.Logger.Error("failed to release expired hold",
				zap.String("bookingId", bookingID), zap.Error(relErr))
		}
		return nil, &AuthorizationExpiredError{BookingID: bookingID, ExpiredAt: expiredAt}
	}

	if _, err := s.Payments.Capture(ctx, externalRef, key); err != nil {
		return nil, err
	}

	release = s.locks.acquire(bookingID)
	b, err = s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		release()
		return nil, err
	}
	if b.State == models.StateConfirmed {
		release()
		return b, nil
	}
	if _, ok := nextState(b.State, EventCapture); !ok {
		release()
		return nil, &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: EventCapture}
	}

	from := b.State
	b.Authorization.Status = authStatusCaptured
	b.RecordTransition(models.StateConfirmed, EventCapture, s.Now())

	committed, err := s.Bookings.CommitTransition(ctx, from, b)
	release()
	if err != nil {
		return nil, err
	}
	if !committed {
		current, loadErr := s.Bookings.GetByID(ctx, bookingID)
		if loadErr == nil && current.State == models.StateConfirmed {
			return current, nil
		}
		return nil, &IllegalTransitionError{BookingID: bookingID, From: stateOf(current), Event: EventCapture}
	}

	s.notify(ctx, models.NotifyGuestCharged, b, b.Guest.Email, "")

	s.Logger.Info("booking confirmed",
		zap.String("bookingId", b.ID),
		zap.Float64("amount", b.TotalAmount))
	return b, nil
}

// Release cancels the hold without charging.
func (s *DefaultBookingService) Release(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	return s.releaseInternal(ctx, bookingID, EventRelease, reason)
}

// ReleaseExpired is the expiry watch: invoked when a hold reaches its
// expiry time without being captured. Terminal states make it a no-op.
func (s *DefaultBookingService) ReleaseExpired(ctx context.Context, bookingID string) error {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if err == bookingRepo.ErrNotFound {
			return nil
		}
		return err
	}
	if b.State != models.StateHoldCreated && b.State != models.StateAuthorized {
		return nil
	}

	_, err = s.releaseInternal(ctx, bookingID, EventExpireRelease, "authorization expired")
	if err != nil {
		if _, ok := err.(*IllegalTransitionError); ok {
			// Lost the race against a capture or manual release.
			return nil
		}
		return err
	}
	return nil
}

func (s *DefaultBookingService) releaseInternal(ctx context.Context, bookingID, event, reason string) (*models.Booking, error) {
	key := payment.IdempotencyKey(bookingID, "release")

	release := s.locks.acquire(bookingID)
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		release()
		return nil, err
	}
	if b.State == models.StateReleased {
		release()
		return b, nil
	}
	if _, ok := nextState(b.State, event); !ok {
		release()
		return nil, &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: event}
	}
	if b.Authorization == nil {
		release()
		return nil, fmt.Errorf("booking %s is %s but carries no payment authorization", b.ID, b.State)
	}
	externalRef := b.Authorization.ExternalRef
	release()

	if _, err := s.Payments.Release(ctx, externalRef, key); err != nil {
		return nil, err
	}

	release = s.locks.acquire(bookingID)
	b, err = s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		release()
		return nil, err
	}
	if b.State == models.StateReleased {
		release()
		return b, nil
	}
	if _, ok := nextState(b.State, event); !ok {
		release()
		return nil, &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: event}
	}

	from := b.State
	if event == EventExpireRelease {
		b.Authorization.Status = authStatusExpired
	} else {
		b.Authorization.Status = authStatusReleased
	}
	b.DeclineReason = reason
	b.RecordTransition(models.StateReleased, event, s.Now())

	committed, err := s.Bookings.CommitTransition(ctx, from, b)
	release()
	if err != nil {
		return nil, err
	}
	if !committed {
		current, loadErr := s.Bookings.GetByID(ctx, bookingID)
		if loadErr == nil && current.State == models.StateReleased {
			return current, nil
		}
		return nil, &IllegalTransitionError{BookingID: bookingID, From: stateOf(current), Event: event}
	}

	s.notify(ctx, models.NotifyGuestReleased, b, b.Guest.Email, reason)

	s.Logger.Info("hold released",
		zap.String("bookingId", b.ID),
		zap.String("reason", reason))
	return b, nil
}

// GetBooking returns the booking by id.
func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.Bookings.GetByID(ctx, bookingID)
}

// AccessBooking resolves a booking through the possession-based channel:
// the caller must present both the public reference and the guest email it
// was booked with. A mismatch is indistinguishable from a missing booking.
func (s *DefaultBookingService) AccessBooking(ctx context.Context, reference, guestEmail string) (*models.Booking, error) {
	b, err := s.Bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(b.Guest.Email, guestEmail) {
		return nil, bookingRepo.ErrNotFound
	}
	return b, nil
}

// notify enqueues one notification; failures are logged, never propagated.
// Delivery must not block or fail a state transition.
func (s *DefaultBookingService) notify(ctx context.Context, kind models.NotificationKind, b *models.Booking, recipient, reason string) {
	if s.Notifier == nil {
		return
	}
	payload := models.NotificationPayload{
		ID:         uuid.New().String(),
		Kind:       kind,
		BookingID:  b.ID,
		Recipient:  recipient,
		Reference:  b.ConfirmationReference,
		GuestName:  b.Guest.Name,
		OfferTitle: b.Offer.Title,
		Amount:     b.TotalAmount,
		Currency:   b.Currency,
		Reason:     reason,
		CreatedAt:  s.Now(),
	}
	if b.Authorization != nil {
		payload.ExternalRef = b.Authorization.ExternalRef
	}
	if err := s.Notifier.Dispatch(ctx, payload); err != nil {
		s.Logger.Error("failed to enqueue notification",
			zap.String("kind", string(kind)),
			zap.String("bookingId", b.ID),
			zap.Error(err))
	}
}

// transitionLocal runs a purely local transition: lock, load, guard,
// commit. No processor call happens inside.
func (s *DefaultBookingService) transitionLocal(ctx context.Context, bookingID, event string, guard func(*models.Booking) error) (*models.Booking, error) {
	release := s.locks.acquire(bookingID)
	defer release()

	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	to, ok := nextState(b.State, event)
	if !ok {
		return nil, &IllegalTransitionError{BookingID: b.ID, From: b.State, Event: event}
	}
	if guard != nil {
		if err := guard(b); err != nil {
			return nil, err
		}
	}

	from := b.State
	b.RecordTransition(to, event, s.Now())

	committed, err := s.Bookings.CommitTransition(ctx, from, b)
	if err != nil {
		return nil, err
	}
	if !committed {
		current, _ := s.Bookings.GetByID(ctx, bookingID)
		return nil, &IllegalTransitionError{BookingID: bookingID, From: stateOf(current), Event: event}
	}
	return b, nil
}

func (s *DefaultBookingService) operatorEmail() string {
	return config.AppConfig.OperatorEmail
}

func validateGuest(g models.Guest) error {
	if strings.TrimSpace(g.Name) == "" {
		return newValidationError("guest.name", "is required")
	}
	if !strings.Contains(g.Email, "@") {
		return newValidationError("guest.email", "must be a valid email address")
	}
	return nil
}

func stateOf(b *models.Booking) models.BookingState {
	if b == nil {
		return ""
	}
	return b.State
}
