package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckFunc pings one dependency.
type CheckFunc func(ctx context.Context) error

// HealthHandler reports liveness and per-dependency connectivity.
type HealthHandler struct {
	version string
	checks  map[string]CheckFunc
}

// NewHealthHandler returns a HealthHandler over the given named checks.
func NewHealthHandler(version string, checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

// Health godoc
// @Summary      Liveness and storage connectivity
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	results := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = "degraded"
			results[name] = "down"
		} else {
			results[name] = "up"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    results,
	})
}
