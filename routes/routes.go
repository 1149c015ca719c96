package routes

import (
	"net/http"
	"time"

	"gymstay/handlers"
	"gymstay/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterOfferRoutes registers quote endpoints.
func RegisterOfferRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/offers")
	{
		api.GET("/:id/quote", hb.Offer.GetQuote)
	}
}

// RegisterDraftRoutes registers checkout draft endpoints.
func RegisterDraftRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/checkout/drafts")
	{
		api.PUT("/:scope", hb.Draft.SaveDraft)
		api.GET("/:scope", hb.Draft.GetDraft)
		api.DELETE("/:scope", hb.Draft.DeleteDraft)
	}
}

// RegisterWebhookRoutes registers processor callback endpoints. The webhook
// path authenticates by signature, not by session.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/webhooks")
	{
		api.POST("/payment", hb.Webhook.HandleStripeEvent)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm GymStay"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterOfferRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterDraftRoutes(r, hb)
	RegisterHealthRoute(r)
}
