package routes

import (
	"slotly/handlers"
	"slotly/middleware"
	"slotly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterScheduleRoutes registers vendor availability and slot request endpoints.
func RegisterScheduleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/schedules")
	{
		api.POST("/normal", hb.UpsertNormalScheduleHandler)
		api.POST("/special", hb.SetSpecialServiceHandler)
		api.PATCH("/special-service/toggle", hb.ToggleSpecialServiceHandler)
		api.POST("/request", hb.RequestNormalSlotHandler)
		api.POST("/request-special-slot", hb.RequestSpecialSlotHandler)

		api.GET("/vendor/:vendorId", hb.GetVendorSlotsHandler)
		api.GET("/filter", hb.FilterSchedulesHandler)
		api.GET("", hb.ListSchedulesHandler)
		api.GET("/:id", hb.GetScheduleHandler)
		api.DELETE("/:id", hb.DeleteScheduleHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.GET("", hb.ListBookingsHandler)
		api.GET("/customer/:customerId", hb.ListCustomerBookingsHandler)
		api.POST("/customer/:customerId/reconcile", hb.ReconcileCustomerHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.PUT("/:id", hb.UpdateBookingHandler)
		api.PATCH("/:id/cancel", hb.CancelBookingHandler)
		api.POST("/:id/track", hb.TrackBookingHandler)
		api.DELETE("/:id", hb.DeleteBookingHandler)
	}
}

// RegisterCatalogRoutes registers the service, vendor and customer records.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	services := r.Group("/api/services")
	{
		services.POST("", hb.CreateServiceHandler)
		services.GET("/:id", hb.GetServiceHandler)
	}

	vendors := r.Group("/api/vendors")
	{
		vendors.POST("", hb.CreateVendorHandler)
		vendors.GET("/nearby", hb.NearbyVendorsHandler)
		vendors.GET("/:id", hb.GetVendorHandler)
	}

	customers := r.Group("/api/customers")
	{
		customers.POST("", hb.CreateCustomerHandler)
		customers.GET("/:id", hb.GetCustomerHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	RegisterHealthRoute(r, hb)
	RegisterScheduleRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
}

// NewRouter builds the engine with the global middleware stack and every route.
func NewRouter(hb *handlers.HandlerBundle, logger *zap.Logger, requestsPerMin int) *gin.Engine {
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(requestsPerMin))

	RegisterRoutes(router, hb)
	return router
}
