package handlers

import (
	"errors"
	"net/http"

	"loyaltycard/internal/services"
	"loyaltycard/internal/validators"
	"loyaltycard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PassKitHandler implements the device registration part of the Apple Wallet
// pass web service. Apple expects bare status codes, not the API envelope.
type PassKitHandler struct {
	customerService services.CustomerService
	passTypeID      string
	logger          *logger.Logger
}

func NewPassKitHandler(customerService services.CustomerService, passTypeID string, logger *logger.Logger) *PassKitHandler {
	return &PassKitHandler{
		customerService: customerService,
		passTypeID:      passTypeID,
		logger:          logger,
	}
}

func (h *PassKitHandler) passTypeMatches(c *gin.Context) bool {
	return h.passTypeID == "" || c.Param("pass_type") == h.passTypeID
}

func (h *PassKitHandler) RegisterDevice(c *gin.Context) {
	if !h.passTypeMatches(c) {
		c.Status(http.StatusNotFound)
		return
	}

	var request validators.PassRegistrationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if errs := validators.ValidatePassRegistration(&request); len(errs) > 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	created, err := h.customerService.RegisterPassDevice(c.Request.Context(), c.Param("serial"), c.Param("device"), request.PushToken)
	if err != nil {
		h.passKitError(c, err)
		return
	}

	if created {
		c.Status(http.StatusCreated)
		return
	}
	c.Status(http.StatusOK)
}

func (h *PassKitHandler) UnregisterDevice(c *gin.Context) {
	if !h.passTypeMatches(c) {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.customerService.UnregisterPassDevice(c.Request.Context(), c.Param("serial"), c.Param("device")); err != nil {
		h.passKitError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *PassKitHandler) passKitError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	h.logger.WithContext(c.Request.Context()).WithError(err).Error("PassKit request failed")
	c.Status(http.StatusInternalServerError)
}
