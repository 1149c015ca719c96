package models

import "time"

// NotificationKind identifies the message template for a lifecycle event.
type NotificationKind string

const (
	NotifyGuestRequested     NotificationKind = "guest_requested"
	NotifyHostNewRequest     NotificationKind = "host_new_request"
	NotifyGuestAccepted      NotificationKind = "guest_accepted"
	NotifyGuestDeclined      NotificationKind = "guest_declined"
	NotifyGuestAuthorized    NotificationKind = "guest_authorized"
	NotifyOperatorAuthorized NotificationKind = "operator_authorized"
	NotifyGuestCharged       NotificationKind = "guest_charged"
	NotifyGuestReleased      NotificationKind = "guest_released"
)

// NotificationPayload is the queued message for one outbound email. Delivery
// is at-least-once and independent of booking state.
type NotificationPayload struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"kind"`
	BookingID   string           `json:"bookingId"`
	Recipient   string           `json:"recipient"`
	Reference   string           `json:"reference"`
	GuestName   string           `json:"guestName,omitempty"`
	OfferTitle  string           `json:"offerTitle,omitempty"`
	Amount      float64          `json:"amount,omitempty"`
	Currency    string           `json:"currency,omitempty"`
	ExternalRef string           `json:"externalRef,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}
