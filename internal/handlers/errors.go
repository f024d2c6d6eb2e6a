package handlers

import (
	"errors"
	"net/http"

	"loyaltycard/internal/services"
	"loyaltycard/internal/utils"
	"loyaltycard/internal/validators"
	"loyaltycard/pkg/logger"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Wallet kinds come first: they are joined with the provider's cause.
var errorMappings = []errorMapping{
	{services.ErrWalletProvider, http.StatusBadGateway, utils.CodeWalletProvider},
	{services.ErrWalletSync, http.StatusBadGateway, utils.CodeWalletSync},
	{services.ErrValidation, http.StatusBadRequest, utils.CodeValidation},
	{services.ErrMalformedPayload, http.StatusBadRequest, utils.CodeMalformedPayload},
	{services.ErrTenantMismatch, http.StatusForbidden, utils.CodeTenantMismatch},
	{services.ErrNotFound, http.StatusNotFound, utils.CodeCustomerNotFound},
	{services.ErrTenantNotFound, http.StatusNotFound, utils.CodeTenantNotFound},
	{services.ErrInactive, http.StatusConflict, utils.CodeCustomerInactive},
	{services.ErrNoRewardsAvailable, http.StatusConflict, utils.CodeNoRewardsAvailable},
	{services.ErrLimitReached, http.StatusForbidden, utils.CodeLimitReached},
	{services.ErrNotificationLimitReached, http.StatusForbidden, utils.CodeNotificationLimitReached},
	{services.ErrScanInProgress, http.StatusConflict, utils.CodeScanInProgress},
	{services.ErrConcurrentModification, http.StatusConflict, utils.CodeConcurrentModification},
}

// handleServiceError writes the error envelope for a service error. Messages
// come from the error kind so provider responses never reach the client.
func handleServiceError(c *gin.Context, log *logger.Logger, err error) {
	var fieldErrs validators.ValidationErrors
	if errors.As(err, &fieldErrs) {
		utils.ValidationErrorResponse(c, fieldErrs.Details())
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.WithContext(c.Request.Context()).WithError(err).Error("Upstream failure")
			}
			utils.ErrorResponse(c, m.status, m.code, m.err.Error())
			return
		}
	}

	log.WithContext(c.Request.Context()).WithError(err).Error("Unhandled service error")
	utils.InternalServerErrorResponse(c)
}

func bindValidationErrors(c *gin.Context, errs validators.ValidationErrors) {
	utils.ValidationErrorResponse(c, errs.Details())
}
