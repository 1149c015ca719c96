package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"gymstay/services/booking"
	"gymstay/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = 65536

// WebhookHandler receives processor events. It is the second delivery path
// for authorization confirmations next to the client redirect.
type WebhookHandler struct {
	Service       booking.BookingService
	WebhookSecret string
	Logger        *zap.Logger
}

func NewWebhookHandler(service booking.BookingService, webhookSecret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Service: service, WebhookSecret: webhookSecret, Logger: logger}
}

// HandleStripeEvent verifies the event signature and records completed
// authorizations. Unknown event types are acknowledged and dropped.
func (h *WebhookHandler) HandleStripeEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid payload", err.Error())
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "signature verification failed", "")
		return
	}

	switch event.Type {
	case "payment_intent.amount_capturable_updated":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid event data", err.Error())
			return
		}

		if _, err := h.Service.RecordAuthorizationByRef(c.Request.Context(), pi.ID); err != nil {
			// Duplicate deliveries land here as no-ops; real failures are
			// surfaced so the processor retries the webhook.
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true})

	default:
		h.Logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
