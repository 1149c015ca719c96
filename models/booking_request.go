package models

import "time"

// BookingRequest is the guest's reservation request against an offer.
type BookingRequest struct {
	OfferID   string    `json:"offerId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"` // exclusive
	Guest     Guest     `json:"guest"`
	Notes     string    `json:"notes,omitempty"`
}
