package handlers

import (
	"loyaltycard/internal/middleware"
	"loyaltycard/internal/services"
	"loyaltycard/internal/utils"
	"loyaltycard/pkg/logger"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	customerService services.CustomerService
	planService     services.PlanService
	logger          *logger.Logger
}

func NewDashboardHandler(customerService services.CustomerService, planService services.PlanService, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		customerService: customerService,
		planService:     planService,
		logger:          logger,
	}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.customerService.GetStats(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Stats retrieved successfully", stats)
}

func (h *DashboardHandler) GetEnrollmentLink(c *gin.Context) {
	link, err := h.customerService.EnrollmentLink(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Enrollment link retrieved successfully", gin.H{"enrollment_link": link})
}

func (h *DashboardHandler) GetPlanLimits(c *gin.Context) {
	limits, err := h.planService.ResolveLimits(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Plan limits retrieved successfully", gin.H{
		"limits":       limits,
		"limits_known": limits != nil,
	})
}
