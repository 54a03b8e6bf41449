package routes

import (
	"time"

	"wheelhouse/handlers"
	"wheelhouse/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options carries the middleware settings the router needs.
type Options struct {
	JWTSecret         string
	MaxRequestsPerMin int
	Logger            *zap.Logger
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	api := r.Group("/bookings")
	api.Use(middleware.JWTAuthMiddleware(opts.JWTSecret, opts.Logger))
	{
		api.POST("", hb.Booking.CreateBookingHandler)
		api.GET("", hb.Booking.ListBookingsHandler)
		api.GET("/:id", hb.Booking.GetBookingHandler)
		api.POST("/:id/confirm", hb.Booking.ConfirmBookingHandler)
		api.POST("/:id/deliver", hb.Booking.DeliverBookingHandler)
		api.POST("/:id/return", hb.Booking.ReturnVehicleHandler)
		api.POST("/:id/complete", hb.Booking.CompleteBookingHandler)
		api.POST("/:id/cancel", hb.Booking.CancelBookingHandler)
		api.PATCH("/:id/soft-delete", hb.Booking.SoftDeleteBookingHandler)
		api.POST("/:id/note", hb.Booking.AddAdminNoteHandler)
		api.DELETE("/:id", hb.Booking.DeleteBookingHandler)
	}

	vehicles := r.Group("/vehicles")
	vehicles.Use(middleware.JWTAuthMiddleware(opts.JWTSecret, opts.Logger))
	vehicles.GET("/:id/availability", hb.Booking.CheckAvailabilityHandler)
}

// RegisterPaymentRoutes registers the Stripe webhook. Stripe signs its deliveries, so no JWT here.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Payment == nil {
		return
	}
	r.POST("/payments/webhook", hb.Payment.StripeWebhookHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Health == nil {
		return
	}
	r.GET("/health", hb.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin, opts.Logger))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb, opts)
	RegisterPaymentRoutes(r, hb)
}
