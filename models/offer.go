package models

import "time"

// OfferKind distinguishes how an offer is billed and what it bundles.
type OfferKind string

const (
	OfferTraining              OfferKind = "training"
	OfferTrainingAccommodation OfferKind = "training_accommodation"
	OfferAllInclusive          OfferKind = "all_inclusive"
	OfferCustom                OfferKind = "custom"
)

// BookingMode controls whether the host must accept a request before payment.
type BookingMode string

const (
	ModeRequestToBook BookingMode = "request_to_book"
	ModeInstant       BookingMode = "instant"
)

// RateTable holds the tiered prices for an offer in minor currency units.
// At least one tier must be present; training offers require Daily, all
// other kinds require Weekly or Monthly.
type RateTable struct {
	Daily   *float64 `bson:"daily,omitempty" json:"daily,omitempty"`
	Weekly  *float64 `bson:"weekly,omitempty" json:"weekly,omitempty"`
	Monthly *float64 `bson:"monthly,omitempty" json:"monthly,omitempty"`
}

// Offer is a bookable package published by a gym. Offers are created and
// edited by gym-management tooling; the booking core only reads them.
type Offer struct {
	ID                     string        `bson:"id" json:"id"`
	GymID                  string        `bson:"gym_id" json:"gymId"`
	Title                  string        `bson:"title" json:"title"`
	Kind                   OfferKind     `bson:"kind" json:"kind"`
	Rates                  RateTable     `bson:"rates" json:"rates"`
	Currency               string        `bson:"currency" json:"currency"`
	MinStayDays            int           `bson:"min_stay_days" json:"minStayDays"`
	BookingMode            BookingMode   `bson:"booking_mode" json:"bookingMode"`
	CancellationWindowDays int           `bson:"cancellation_window_days,omitempty" json:"cancellationWindowDays,omitempty"`
	Amenities              AmenityConfig `bson:"amenities,omitempty" json:"amenities,omitempty"`
	BlackoutDates          []string      `bson:"blackout_dates,omitempty" json:"blackoutDates,omitempty"` // "2006-01-02"
	HostEmail              string        `bson:"host_email" json:"hostEmail"`
	CreatedAt              time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt              time.Time     `bson:"updated_at" json:"updatedAt"`
}

// HasBlackout reports whether any blackout date falls inside [start, end).
func (o *Offer) HasBlackout(start, end time.Time) bool {
	for _, d := range o.BlackoutDates {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		if !day.Before(start) && day.Before(end) {
			return true
		}
	}
	return false
}
