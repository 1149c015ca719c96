package booking

import "gymstay/models"

// Lifecycle events. Every transition is a function of (state, event); an
// illegal pair is rejected with IllegalTransitionError, never coerced.
const (
	EventHostAccept    = "host_accept"
	EventHostDecline   = "host_decline"
	EventCreateHold    = "create_hold"
	EventAuthorize     = "record_authorization"
	EventCapture       = "capture"
	EventRelease       = "release"
	EventExpireRelease = "expire_release"
)

// legalTransitions is the full transition table. Instant-mode bookings skip
// the host decision: CreateHold is additionally legal from REQUESTED, which
// the coordinator gates on the offer's booking mode.
var legalTransitions = map[models.BookingState]map[string]models.BookingState{
	models.StateRequested: {
		EventHostAccept:  models.StateHostAccepted,
		EventHostDecline: models.StateHostDeclined,
		EventCreateHold:  models.StateHoldCreated, // instant mode only
	},
	models.StateHostAccepted: {
		EventCreateHold: models.StateHoldCreated,
	},
	models.StateHoldCreated: {
		EventAuthorize:     models.StateAuthorized,
		EventRelease:       models.StateReleased,
		EventExpireRelease: models.StateReleased,
	},
	models.StateAuthorized: {
		EventCapture:       models.StateConfirmed,
		EventRelease:       models.StateReleased,
		EventExpireRelease: models.StateReleased,
	},
}

// nextState resolves the transition table for one (state, event) pair.
func nextState(from models.BookingState, event string) (models.BookingState, bool) {
	events, ok := legalTransitions[from]
	if !ok {
		return "", false
	}
	to, ok := events[event]
	return to, ok
}

// activeStates are the states that block a new booking for an overlapping
// date range on the same offer.
var activeStates = []models.BookingState{
	models.StateHoldCreated,
	models.StateAuthorized,
	models.StateConfirmed,
}
