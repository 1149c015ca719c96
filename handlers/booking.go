package handlers

import (
	"net/http"
	"time"

	"gymstay/models"
	"gymstay/services/booking"
	"gymstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the guest-facing and host-facing booking
// endpoints.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(service booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

// CreateBooking handles the guest reservation request.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input struct {
		OfferID    string `json:"offerId" binding:"required"`
		StartDate  string `json:"startDate" binding:"required"`
		EndDate    string `json:"endDate" binding:"required"`
		GuestName  string `json:"guestName" binding:"required"`
		GuestEmail string `json:"guestEmail" binding:"required"`
		GuestPhone string `json:"guestPhone"`
		Notes      string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	start, err := time.Parse("2006-01-02", input.StartDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "startDate must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", input.EndDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "endDate must be YYYY-MM-DD")
		return
	}

	b, err := h.Service.RequestBooking(c.Request.Context(), models.BookingRequest{
		OfferID:   input.OfferID,
		StartDate: start,
		EndDate:   end,
		Guest: models.Guest{
			Name:  input.GuestName,
			Email: input.GuestEmail,
			Phone: input.GuestPhone,
		},
		Notes: input.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"bookingId":             b.ID,
		"confirmationReference": b.ConfirmationReference,
		"totalAmount":           b.TotalAmount,
		"currency":              b.Currency,
		"priceLabel":            b.PriceLabel,
		"state":                 b.State,
	})
}

// GetBooking returns the public view of a booking. The confirmation PIN is
// excluded from serialization and never appears here.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AccessBooking is the possession-based channel for the confirmation PIN:
// the caller posts the public reference together with the guest email. The
// PIN travels only in this response body, never in a URL or log line.
func (h *BookingHandler) AccessBooking(c *gin.Context) {
	var input struct {
		Reference  string `json:"reference" binding:"required"`
		GuestEmail string `json:"guestEmail" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Service.AccessBooking(c.Request.Context(), input.Reference, input.GuestEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking":         b,
		"confirmationPin": b.ConfirmationPIN,
	})
}

// HostAccept records the host's acceptance of a request-to-book booking.
func (h *BookingHandler) HostAccept(c *gin.Context) {
	b, err := h.Service.HostAccept(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "state": b.State})
}

// HostDecline records the host's rejection with a reason for the guest.
func (h *BookingHandler) HostDecline(c *gin.Context) {
	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Service.HostDecline(c.Request.Context(), c.Param("bookingID"), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookingId": b.ID, "state": b.State})
}
