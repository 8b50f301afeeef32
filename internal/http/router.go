package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	"github.com/mustafa2080/tourism-API/internal/domain"
	h "github.com/mustafa2080/tourism-API/internal/http/handlers"
	"github.com/mustafa2080/tourism-API/internal/http/middleware"
)

func NewRouter(env intconfig.Env, hd *h.Handler) *gin.Engine {
	h.RegisterValidators()
	h.ExposeErrorStacks(env.IsDevelopment())

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), h.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		logrus.WithError(err).Warn("Failed to set trusted proxies")
	}

	r.NoRoute(h.NotFound)

	authn := middleware.Authenticate(hd.Auth)
	admin := middleware.Authorize(domain.RoleAdmin)

	api := r.Group("/api/v1")
	{
		api.GET("/health", hd.Health)
		api.GET("/health/db", hd.HealthDB)
		api.GET("/routes", hd.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", hd.Register)
		auth.POST("/register-admin", hd.RegisterAdmin)
		auth.POST("/login", hd.Login)
		auth.POST("/refresh", hd.Refresh)
		auth.POST("/logout", middleware.OptionalAuth(hd.Auth), hd.Logout)
		auth.POST("/forgot-password", hd.ForgotPassword)
		auth.POST("/reset-password", hd.ResetPassword)
		auth.GET("/me", authn, hd.Me)
		auth.PUT("/change-password", authn, hd.ChangePassword)

		// Trips
		trips := api.Group("/trips")
		trips.GET("", hd.ListTrips)
		trips.GET("/:tripId", hd.GetTrip)
		trips.GET("/:tripId/availability", hd.GetTripAvailability)
		trips.GET("/:tripId/itinerary", hd.GetTripItinerary)
		trips.POST("/:tripId/bookings", authn, hd.CreateBooking)
		trips.POST("", authn, admin, hd.CreateTrip)
		trips.PUT("/:tripId", authn, admin, hd.UpdateTrip)
		trips.DELETE("/:tripId", authn, admin, hd.DeleteTrip)
		trips.POST("/:tripId/publish", authn, admin, hd.PublishTrip)
		trips.POST("/:tripId/unpublish", authn, admin, hd.UnpublishTrip)

		// Bookings
		bookings := api.Group("/bookings", authn)
		bookings.GET("", hd.ListMyBookings)
		bookings.GET("/:bookingId", hd.GetBooking)
		bookings.PUT("/:bookingId", hd.UpdateBooking)
		bookings.PUT("/:bookingId/cancel", hd.CancelBooking)
		bookings.GET("/:bookingId/ticket", hd.GetBookingTicket)
		bookings.GET("/:bookingId/invoice", hd.GetBookingInvoice)
		bookings.POST("/:bookingId/confirm", admin, hd.ConfirmBooking)
		bookings.DELETE("/:bookingId", admin, hd.DeleteBooking)

		// Uploads
		uploads := api.Group("/uploads")
		uploads.POST("/sign", authn, hd.SignUpload)
		uploads.POST("/confirm", authn, hd.ConfirmUpload)
		uploads.PUT("/mock/:uploadId", hd.MockUpload)

		// Admin
		adm := api.Group("/admin", authn, admin)
		adm.GET("/bookings", hd.ListAllBookings)
		adm.GET("/trips", hd.ListAllTrips)
		adm.PUT("/trips/:tripId/override-availability", hd.OverrideTripAvailability)
		adm.GET("/audit-logs", hd.ListAuditLogs)
	}

	h.SetRouter(r)
	return r
}
