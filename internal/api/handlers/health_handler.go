package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sysdb/sysdbd/internal/health"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	checker health.Checker
	logger  logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker *health.Checker, logger logger.Logger) *HealthHandler {
	return &HealthHandler{
		checker: *checker,
		logger:  logger,
	}
}

// GetHealth handles GET /healthz
func (h *HealthHandler) GetHealth(c *gin.Context) {
	result := h.checker.RunChecks()

	statusCode := http.StatusOK
	if result.Status == health.StatusDown {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, result)
}

// RegisterHandler registers the health route.
func (h *HealthHandler) RegisterHandler(router gin.IRouter) {
	router.GET("/healthz", h.GetHealth)
}
