package handlers

import (
	"net/http"

	"gymstay/services/booking"
	"gymstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler exposes the payment-step endpoints of the booking
// lifecycle.
type PaymentHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewPaymentHandler(service booking.BookingService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Service: service, Logger: logger}
}

// CreateHold asks the payment authority to hold the booking total and
// returns the client secret the guest's payment UI needs.
func (h *PaymentHandler) CreateHold(c *gin.Context) {
	b, clientSecret, err := h.Service.CreateHold(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookingId":    b.ID,
		"state":        b.State,
		"clientSecret": clientSecret,
	})
}

// ConfirmAuthorization is the client-redirect path for recording a
// completed authorization. The webhook delivers the same event; both are
// tolerated because the transition is idempotent on the payment reference.
func (h *PaymentHandler) ConfirmAuthorization(c *gin.Context) {
	var input struct {
		ExternalPaymentRef string `json:"externalPaymentRef" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Service.RecordAuthorization(c.Request.Context(), c.Param("bookingID"), input.ExternalPaymentRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "state": b.State})
}

// Capture converts the hold into a charge and confirms the booking.
func (h *PaymentHandler) Capture(c *gin.Context) {
	b, err := h.Service.Capture(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "state": b.State})
}

// Release cancels the hold without charging.
func (h *PaymentHandler) Release(c *gin.Context) {
	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Service.Release(c.Request.Context(), c.Param("bookingID"), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "state": b.State})
}
