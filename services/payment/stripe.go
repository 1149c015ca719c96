package payment

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// StripeAuthority implements Authority using manual-capture PaymentIntents:
// CreateHold creates an intent that authorizes without charging, Capture
// converts the hold into a charge, Release cancels it. Stripe's own
// idempotency-key handling provides the call-twice safety.
type StripeAuthority struct {
	logger  *zap.Logger
	holdTTL time.Duration
}

// NewStripeAuthority builds the adapter. holdTTL is the processor-defined
// hold lifetime echoed back on every created hold.
func NewStripeAuthority(logger *zap.Logger, holdTTL time.Duration) *StripeAuthority {
	return &StripeAuthority{
		logger:  logger,
		holdTTL: holdTTL,
	}
}

// CreateHold creates a manual-capture PaymentIntent for the amount.
func (a *StripeAuthority) CreateHold(ctx context.Context, amount float64, currency string, idempotencyKey string) (*Hold, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(math.Round(amount))),
		Currency:      stripe.String(strings.ToLower(currency)),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	pi, err := paymentintent.New(params)
	if err != nil {
		a.logger.Error("stripe create hold failed",
			zap.String("idempotencyKey", idempotencyKey), zap.Error(err))
		return nil, newProcessorError("create_hold", idempotencyKey, err)
	}

	a.logger.Info("stripe hold created",
		zap.String("paymentIntent", pi.ID), zap.Int64("amount", pi.Amount))

	return &Hold{
		ExternalRef:  pi.ID,
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
		ExpiresAt:    time.Now().Add(a.holdTTL),
	}, nil
}

// Capture converts an authorized hold into a charge.
func (a *StripeAuthority) Capture(ctx context.Context, externalRef string, idempotencyKey string) (*Result, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	pi, err := paymentintent.Capture(externalRef, params)
	if err != nil {
		a.logger.Error("stripe capture failed",
			zap.String("paymentIntent", externalRef),
			zap.String("idempotencyKey", idempotencyKey), zap.Error(err))
		return nil, newProcessorError("capture", idempotencyKey, err)
	}

	a.logger.Info("stripe hold captured", zap.String("paymentIntent", pi.ID))
	return &Result{Status: string(pi.Status)}, nil
}

// Release cancels a hold without charging.
func (a *StripeAuthority) Release(ctx context.Context, externalRef string, idempotencyKey string) (*Result, error) {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	pi, err := paymentintent.Cancel(externalRef, params)
	if err != nil {
		a.logger.Error("stripe release failed",
			zap.String("paymentIntent", externalRef),
			zap.String("idempotencyKey", idempotencyKey), zap.Error(err))
		return nil, newProcessorError("release", idempotencyKey, err)
	}

	a.logger.Info("stripe hold released", zap.String("paymentIntent", pi.ID))
	return &Result{Status: string(pi.Status)}, nil
}
