package handlers

import (
	"context"
	"net/http"
	"time"

	"loyaltycard/internal/utils"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	version string
	checks  map[string]Pinger
}

func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			components[name] = "unhealthy: " + err.Error()
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		components[name] = "healthy"
	}

	c.JSON(code, gin.H{
		"status":     status,
		"version":    h.version,
		"components": components,
		"timestamp":  utils.FormatTimeISO(time.Now()),
	})
}
