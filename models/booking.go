package models

import "time"

// BookingState is the lifecycle state of a booking. Bookings move only
// through named transitions; CONFIRMED, HOST_DECLINED, RELEASED and
// CANCELLED are terminal.
type BookingState string

const (
	StateRequested    BookingState = "REQUESTED"
	StateHostAccepted BookingState = "HOST_ACCEPTED"
	StateHostDeclined BookingState = "HOST_DECLINED"
	StateHoldCreated  BookingState = "HOLD_CREATED"
	StateAuthorized   BookingState = "AUTHORIZED"
	StateConfirmed    BookingState = "CONFIRMED"
	StateReleased     BookingState = "RELEASED"
	StateCancelled    BookingState = "CANCELLED"
)

// IsTerminal reports whether no further transitions are legal from s.
func (s BookingState) IsTerminal() bool {
	switch s {
	case StateConfirmed, StateHostDeclined, StateReleased, StateCancelled:
		return true
	}
	return false
}

// Guest is an immutable snapshot of the person booking, not a foreign key
// to an account.
type Guest struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

// OfferSnapshot copies the rate-relevant fields of an Offer at booking
// time. Prices are never recomputed from a mutated Offer after creation.
type OfferSnapshot struct {
	OfferID     string        `bson:"offer_id" json:"offerId"`
	GymID       string        `bson:"gym_id" json:"gymId"`
	Title       string        `bson:"title" json:"title"`
	Kind        OfferKind     `bson:"kind" json:"kind"`
	Rates       RateTable     `bson:"rates" json:"rates"`
	Currency    string        `bson:"currency" json:"currency"`
	MinStayDays int           `bson:"min_stay_days" json:"minStayDays"`
	BookingMode BookingMode   `bson:"booking_mode" json:"bookingMode"`
	Amenities   AmenityConfig `bson:"amenities,omitempty" json:"amenities,omitempty"`
	HostEmail   string        `bson:"host_email" json:"-"`
}

// AuthorizationRef references a processor-side payment authorization. The
// adapter owns the authorization; the booking keeps the reference and the
// expiry echo only.
type AuthorizationRef struct {
	ExternalRef string    `bson:"external_ref" json:"externalRef"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt   time.Time `bson:"expires_at" json:"expiresAt"`
}

// Transition records one state change with its trigger and timestamp.
type Transition struct {
	From  BookingState `bson:"from" json:"from"`
	To    BookingState `bson:"to" json:"to"`
	Event string       `bson:"event" json:"event"`
	At    time.Time    `bson:"at" json:"at"`
}

// Booking is a guest reservation against an offer. TotalAmount is fixed
// once a hold exists; re-pricing requires an explicit new quote.
//
// ConfirmationPIN is a secret: it is excluded from JSON serialization and
// must only ever be returned through the possession-based access endpoint.
type Booking struct {
	ID                    string            `bson:"id" json:"id"`
	ConfirmationReference string            `bson:"confirmation_reference" json:"confirmationReference"`
	ConfirmationPIN       string            `bson:"confirmation_pin" json:"-"`
	Offer                 OfferSnapshot     `bson:"offer" json:"offer"`
	StartDate             time.Time         `bson:"start_date" json:"startDate"`
	EndDate               time.Time         `bson:"end_date" json:"endDate"` // exclusive
	Guest                 Guest             `bson:"guest" json:"guest"`
	Notes                 string            `bson:"notes,omitempty" json:"notes,omitempty"`
	TotalAmount           float64           `bson:"total_amount" json:"totalAmount"`
	Currency              string            `bson:"currency" json:"currency"`
	BillingUnit           string            `bson:"billing_unit" json:"billingUnit"`
	PriceLabel            string            `bson:"price_label" json:"priceLabel"`
	State                 BookingState      `bson:"state" json:"state"`
	DeclineReason         string            `bson:"decline_reason,omitempty" json:"declineReason,omitempty"`
	Authorization         *AuthorizationRef `bson:"authorization,omitempty" json:"authorization,omitempty"`
	Transitions           []Transition      `bson:"transitions" json:"transitions"`
	CreatedAt             time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time         `bson:"updated_at" json:"updatedAt"`
}

// DurationDays returns the stay length in whole days (end exclusive).
func (b *Booking) DurationDays() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// RecordTransition appends a transition entry and moves the state.
func (b *Booking) RecordTransition(to BookingState, event string, at time.Time) {
	b.Transitions = append(b.Transitions, Transition{
		From:  b.State,
		To:    to,
		Event: event,
		At:    at,
	})
	b.State = to
	b.UpdatedAt = at
}
