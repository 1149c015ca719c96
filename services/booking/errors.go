package booking

import (
	"fmt"
	"time"

	"gymstay/models"
)

// ValidationError rejects bad input shape or dates. It is never partially
// applied: nothing is persisted when validation fails.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// MinimumStayNotMetError rejects a booking shorter than the offer's minimum
// stay. Anchor carries the price at the minimum duration for display.
type MinimumStayNotMetError struct {
	MinStayDays   int
	RequestedDays int
	Anchor        *models.Quote
}

func (e *MinimumStayNotMetError) Error() string {
	return fmt.Sprintf("minimum stay is %d days, requested %d", e.MinStayDays, e.RequestedDays)
}

// RateUnavailableError means no price tier can be resolved for the offer
// kind and duration.
type RateUnavailableError struct {
	Kind    models.OfferKind
	Message string
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no resolvable rate for %s offer: %s", e.Kind, e.Message)
}

// IllegalTransitionError rejects a transition attempted from the wrong
// state. The booking is left unchanged.
type IllegalTransitionError struct {
	BookingID string
	From      models.BookingState
	Event     string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("booking %s: event %s is not legal from state %s", e.BookingID, e.Event, e.From)
}

// AuthorizationExpiredError means the hold lapsed before capture. The
// coordinator releases the expired hold instead of letting capture fail
// against it.
type AuthorizationExpiredError struct {
	BookingID string
	ExpiredAt time.Time
}

func (e *AuthorizationExpiredError) Error() string {
	return fmt.Sprintf("booking %s: payment authorization expired at %s", e.BookingID, e.ExpiredAt.Format(time.RFC3339))
}
