package handlers

import (
	"loyaltycard/internal/services"
	"loyaltycard/internal/utils"
	"loyaltycard/internal/validators"
	"loyaltycard/pkg/logger"

	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	enrollmentService services.EnrollmentService
	planService       services.PlanService
	customerService   services.CustomerService
	logger            *logger.Logger
}

func NewEnrollmentHandler(
	enrollmentService services.EnrollmentService,
	planService services.PlanService,
	customerService services.CustomerService,
	logger *logger.Logger,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		planService:       planService,
		customerService:   customerService,
		logger:            logger,
	}
}

type tenantInfo struct {
	TenantID       string `json:"tenant_id"`
	Name           string `json:"name"`
	EnrollmentLink string `json:"enrollment_link"`
}

// GetTenantInfo describes the business behind an enrollment link.
func (h *EnrollmentHandler) GetTenantInfo(c *gin.Context) {
	tenantID := c.Param("tenant_id")

	tenant, err := h.planService.GetTenant(c.Request.Context(), tenantID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	link, err := h.customerService.EnrollmentLink(c.Request.Context(), tenantID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Tenant retrieved successfully", tenantInfo{
		TenantID:       tenant.ID,
		Name:           tenant.Name,
		EnrollmentLink: link,
	})
}

// Enroll registers a customer and returns where to install their pass.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var request validators.EnrollmentRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if request.UserAgent == "" {
		request.UserAgent = c.Request.UserAgent()
	}

	result, err := h.enrollmentService.Enroll(c.Request.Context(), c.Param("tenant_id"), &request)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "Customer enrolled successfully", result)
}
