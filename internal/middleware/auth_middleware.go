package middleware

import (
	"context"
	"net/http"
	"strings"

	"loyaltycard/internal/utils"
	"loyaltycard/pkg/auth"
	"loyaltycard/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	ContextTenantID  = "tenant_id"
	ContextRequestID = "request_id"
)

// TenantAuthRequired verifies the operator's bearer token and sets the tenant
// the request acts for.
func TenantAuthRequired(verifier auth.TenantVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Bearer token required")
			c.Abort()
			return
		}

		tenantID, err := verifier.VerifyTenantToken(c.Request.Context(), strings.TrimSpace(tokenString))
		if err != nil || tenantID == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.CodeUnauthorized, utils.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(ContextTenantID, tenantID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.TenantIDKey, tenantID))

		c.Next()
	}
}

// PassKitAuthRequired checks the "ApplePass <token>" header Apple Wallet
// sends to the pass web service.
func PassKitAuthRequired(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "ApplePass ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, "ApplePass ")
		if expected == "" || token == "" || !utils.SecureCompare(token, expected) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}

// GetTenantID returns the tenant set by TenantAuthRequired.
func GetTenantID(c *gin.Context) string {
	return c.GetString(ContextTenantID)
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
