package payment

import (
	"context"
	"fmt"
	"time"
)

// Hold is the processor-side reservation of funds created for a booking.
type Hold struct {
	ExternalRef  string
	Status       string
	ClientSecret string
	ExpiresAt    time.Time
}

// Result is the processor's answer to a capture or release call.
type Result struct {
	Status string
}

// Authority wraps the external two-phase payment processor. Every operation
// takes an idempotency key and is safe to call more than once with the same
// key: the processor returns the same logical result instead of acting
// twice. Idempotency lives processor-side, not locally.
type Authority interface {
	CreateHold(ctx context.Context, amount float64, currency string, idempotencyKey string) (*Hold, error)
	Capture(ctx context.Context, externalRef string, idempotencyKey string) (*Result, error)
	Release(ctx context.Context, externalRef string, idempotencyKey string) (*Result, error)
}

// IdempotencyKey derives the key for one operation on one booking. The same
// booking and operation always map to the same key, which is what makes
// retries safe against the processor.
func IdempotencyKey(bookingID, operation string) string {
	return fmt.Sprintf("bk:%s:%s", bookingID, operation)
}
