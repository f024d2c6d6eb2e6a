package routes

import (
	"loyaltycard/internal/handlers"
	"loyaltycard/internal/middleware"
	"loyaltycard/pkg/auth"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Enrollment *handlers.EnrollmentHandler
	Scan       *handlers.ScanHandler
	Customer   *handlers.CustomerHandler
	Dashboard  *handlers.DashboardHandler
	PassKit    *handlers.PassKitHandler
	Health     *handlers.HealthHandler
}

// Setup registers every route on router.
func Setup(router *gin.Engine, h *Handlers, verifier auth.TenantVerifier, passKitToken string) {
	router.GET("/health", h.Health.Health)

	v1 := router.Group("/api/v1")
	SetupPublicRoutes(v1, h)
	SetupTenantRoutes(v1, h, verifier)
	SetupPassKitRoutes(router.Group("/passkit"), h.PassKit, passKitToken)
}

// SetupPublicRoutes serves the enrollment link target (no auth required)
func SetupPublicRoutes(r *gin.RouterGroup, h *Handlers) {
	public := r.Group("/public/tenants/:tenant_id")
	{
		public.GET("", h.Enrollment.GetTenantInfo)
		public.POST("/enroll", h.Enrollment.Enroll)
	}
}

// SetupTenantRoutes serves the operator app (tenant token required)
func SetupTenantRoutes(r *gin.RouterGroup, h *Handlers, verifier auth.TenantVerifier) {
	tenant := r.Group("")
	tenant.Use(middleware.TenantAuthRequired(verifier))
	{
		tenant.POST("/scans", h.Scan.ProcessScan)

		customers := tenant.Group("/customers")
		{
			customers.GET("", h.Customer.ListCustomers)
			customers.GET("/:id", h.Customer.GetCustomer)
			customers.POST("/:id/deactivate", h.Customer.DeactivateCustomer)
			customers.POST("/:id/reactivate", h.Customer.ReactivateCustomer)
			customers.POST("/:id/notify", h.Customer.NotifyCustomer)
		}

		dashboard := tenant.Group("/dashboard")
		{
			dashboard.GET("/stats", h.Dashboard.GetStats)
			dashboard.GET("/enrollment-link", h.Dashboard.GetEnrollmentLink)
		}

		tenant.GET("/plan/limits", h.Dashboard.GetPlanLimits)
	}
}

// SetupPassKitRoutes serves the Apple Wallet pass web service
func SetupPassKitRoutes(r *gin.RouterGroup, h *handlers.PassKitHandler, token string) {
	devices := r.Group("/v1/devices/:device/registrations/:pass_type")
	devices.Use(middleware.PassKitAuthRequired(token))
	{
		devices.POST("/:serial", h.RegisterDevice)
		devices.DELETE("/:serial", h.UnregisterDevice)
	}
}
