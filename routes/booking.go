package routes

import (
	"gymstay/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	booking := r.Group("/api/bookings")
	{
		// Guest request and lookup. Access is possession-based: the
		// confirmation reference plus the guest email, never a query string.
		booking.POST("", hb.Booking.CreateBooking)
		booking.GET("/:bookingID", hb.Booking.GetBooking)
		booking.POST("/access", hb.Booking.AccessBooking)

		// Host decision.
		booking.POST("/:bookingID/accept", hb.Booking.HostAccept)
		booking.POST("/:bookingID/decline", hb.Booking.HostDecline)

		// Payment flow: hold, client-side confirm, operator settle.
		booking.POST("/:bookingID/hold", hb.Payment.CreateHold)
		booking.POST("/:bookingID/authorization", hb.Payment.ConfirmAuthorization)
		booking.POST("/:bookingID/capture", hb.Payment.Capture)
		booking.POST("/:bookingID/release", hb.Payment.Release)
	}
}
