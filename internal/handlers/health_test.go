package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Codedeveloper-MT/Vigilent-login/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthReportsDependencyFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewHealthHandler("test", map[string]handlers.CheckFunc{
		"postgres": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})
	r.GET("/api/health", h.Health)

	w := doJSON(r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "degraded", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "up", checks["postgres"])
	assert.Equal(t, "down", checks["redis"])
}
