package notification

import (
	"fmt"

	"gymstay/models"
)

// Render produces the subject and body for a notification payload. Guest
// copy never implies money has moved before the booking is confirmed.
// Messages carry the public confirmation reference only, never the PIN.
func Render(p models.NotificationPayload) (subject, body string) {
	amount := models.FormatAmount(p.Amount, p.Currency)

	switch p.Kind {
	case models.NotifyGuestRequested:
		subject = fmt.Sprintf("Booking request received — %s", p.Reference)
		body = fmt.Sprintf("Hi %s,\n\nWe received your booking request for %s. Your reference is %s.\nYou have not been charged. We'll let you know as soon as the gym responds.",
			p.GuestName, p.OfferTitle, p.Reference)

	case models.NotifyHostNewRequest:
		subject = fmt.Sprintf("New booking request — %s", p.Reference)
		body = fmt.Sprintf("You have a new booking request for %s (reference %s) from %s.\nPlease accept or decline it from your dashboard.",
			p.OfferTitle, p.Reference, p.GuestName)

	case models.NotifyGuestAccepted:
		subject = fmt.Sprintf("Request accepted — %s", p.Reference)
		body = fmt.Sprintf("Hi %s,\n\nGood news: your request for %s was accepted.\nComplete the payment step to secure your spot. You have not been charged yet.",
			p.GuestName, p.OfferTitle)

	case models.NotifyGuestDeclined:
		subject = fmt.Sprintf("Request declined — %s", p.Reference)
		body = fmt.Sprintf("Hi %s,\n\nUnfortunately your request for %s was declined.\nReason: %s\nYou have not been charged.",
			p.GuestName, p.OfferTitle, p.Reason)

	case models.NotifyGuestAuthorized:
		subject = fmt.Sprintf("Payment authorized — %s", p.Reference)
		body = fmt.Sprintf("Hi %s,\n\nYour card was authorized for %s. This is a hold only — you have not been charged.\nThe charge happens once the gym confirms your booking.",
			p.GuestName, amount)

	case models.NotifyOperatorAuthorized:
		subject = fmt.Sprintf("Authorization recorded — booking %s", p.BookingID)
		body = fmt.Sprintf("Booking %s (reference %s): payment authorization %s recorded for %s.\nCapture or release before the hold expires.",
			p.BookingID, p.Reference, p.ExternalRef, amount)

	case models.NotifyGuestCharged:
		subject = fmt.Sprintf("Booking confirmed — %s", p.Reference)
		body = fmt.Sprintf("Hi %s,\n\nYour booking for %s is confirmed and your card has been charged %s.\nSee you at the gym!",
			p.GuestName, p.OfferTitle, amount)

	case models.NotifyGuestReleased:
		subject = fmt.Sprintf("Hold released — %s", p.Reference)
		body = fmt.Sprintf("Hi %s,\n\nThe payment hold for your booking %s was released and you have not been charged.\nReason: %s",
			p.GuestName, p.Reference, p.Reason)

	default:
		subject = fmt.Sprintf("Update on your booking %s", p.Reference)
		body = fmt.Sprintf("There is an update on booking %s.", p.Reference)
	}
	return subject, body
}
