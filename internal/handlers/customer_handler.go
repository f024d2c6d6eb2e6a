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

type CustomerHandler struct {
	customerService  services.CustomerService
	messagingService services.MessagingService
	logger           *logger.Logger
}

func NewCustomerHandler(customerService services.CustomerService, messagingService services.MessagingService, logger *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService:  customerService,
		messagingService: messagingService,
		logger:           logger,
	}
}

// ListCustomers lists the tenant's customers with search and filters
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var filter models.CustomerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.BadRequestResponse(c, "Invalid filter: "+err.Error())
		return
	}

	params := utils.GetPaginationParams(c)
	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), middleware.GetTenantID(c), &filter, params)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Customers retrieved successfully", customers, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(customers),
	})
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customerService.GetCustomer(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Customer retrieved successfully", customer)
}

func (h *CustomerHandler) DeactivateCustomer(c *gin.Context) {
	customer, err := h.customerService.Deactivate(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Customer deactivated successfully", customer)
}

func (h *CustomerHandler) ReactivateCustomer(c *gin.Context) {
	customer, err := h.customerService.Reactivate(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Customer reactivated successfully", customer)
}

// NotifyCustomer shows a message on the customer's wallet pass
func (h *CustomerHandler) NotifyCustomer(c *gin.Context) {
	var request validators.NotifyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateNotify(&request); len(errs) > 0 {
		bindValidationErrors(c, errs)
		return
	}

	counter, err := h.messagingService.NotifyCustomer(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"), request.Message)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Notification sent successfully", gin.H{
		"notifications_this_month": counter.NotificationsThisMonth,
	})
}
