package notification

import (
	"context"

	"gymstay/models"
)

// Service dispatches guest/host emails keyed off lifecycle transitions.
// Delivery is fire-and-forget with an at-least-once contract: a dispatch
// failure is logged and retried by the queue, never blocking a state
// transition.
type Service interface {
	Dispatch(ctx context.Context, payload models.NotificationPayload) error
}

// Mailer sends a rendered message. Implementations must not mutate booking
// state.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
