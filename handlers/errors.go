package handlers

import (
	"errors"
	"net/http"

	bookingRepo "gymstay/database/repository/booking"
	offerRepo "gymstay/database/repository/offer"
	"gymstay/services/booking"
	"gymstay/services/payment"
	"gymstay/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto HTTP responses. Processor failures
// surface as retryable with the idempotency key that was used; guests are
// never told money moved unless the booking is confirmed.
func respondError(c *gin.Context, err error) {
	var validationErr *booking.ValidationError
	var minStayErr *booking.MinimumStayNotMetError
	var rateErr *booking.RateUnavailableError
	var transitionErr *booking.IllegalTransitionError
	var processorErr *payment.ProcessorError
	var expiredErr *booking.AuthorizationExpiredError

	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", validationErr.Error())

	case errors.As(err, &minStayErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message":     "Minimum stay not met",
			"minStayDays": minStayErr.MinStayDays,
			"anchorPrice": minStayErr.Anchor,
		})

	case errors.As(err, &rateErr):
		utils.JSONError(c, http.StatusUnprocessableEntity, "No rate available", rateErr.Error())

	case errors.As(err, &transitionErr):
		utils.JSONError(c, http.StatusConflict, "Illegal transition", transitionErr.Error())

	case errors.As(err, &processorErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"message":        "Payment processor error",
			"retryable":      true,
			"idempotencyKey": processorErr.IdempotencyKey,
		})

	case errors.As(err, &expiredErr):
		utils.JSONError(c, http.StatusGone, "Authorization expired", expiredErr.Error())

	case errors.Is(err, bookingRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Booking not found", "")

	case errors.Is(err, offerRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Offer not found", "")

	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", err.Error())
	}
}
