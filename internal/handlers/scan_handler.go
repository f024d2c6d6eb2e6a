package handlers

import (
	"loyaltycard/internal/middleware"
	"loyaltycard/internal/models"
	"loyaltycard/internal/services"
	"loyaltycard/internal/utils"
	"loyaltycard/internal/validators"
	"loyaltycard/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ScanHandler struct {
	accrualService services.AccrualService
	logger         *logger.Logger
}

func NewScanHandler(accrualService services.AccrualService, logger *logger.Logger) *ScanHandler {
	return &ScanHandler{
		accrualService: accrualService,
		logger:         logger,
	}
}

// ProcessScan credits a visit or redeems a reward for a scanned pass.
func (h *ScanHandler) ProcessScan(c *gin.Context) {
	var request validators.ScanRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateScanRequest(&request); len(errs) > 0 {
		bindValidationErrors(c, errs)
		return
	}

	tenantID := middleware.GetTenantID(c)

	var (
		result *models.AccrualResult
		err    error
	)
	if request.Payload != nil {
		result, err = h.accrualService.ProcessScan(c.Request.Context(), tenantID, request.Payload, request.ScanMode())
	} else {
		result, err = h.accrualService.ProcessRawScan(c.Request.Context(), tenantID, request.Raw, request.ScanMode())
	}
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, result.Summary, result)
}
