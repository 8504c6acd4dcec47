package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// MetricsHandler exposes the Prometheus exposition endpoint on the admin
// HTTP surface. The frontend/store metrics themselves are recorded directly
// by internal/metrics.Collector as commands execute; this handler only
// serves the scrape endpoint.
type MetricsHandler struct {
	logger logger.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(logger logger.Logger) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
	}
}

// GetMetrics handles GET /metrics
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	h.logger.Debug("Serving metrics request")

	promHandler := promhttp.Handler()
	promHandler.ServeHTTP(c.Writer, c.Request)
}

// RegisterHandler registers all metrics routes
func (h *MetricsHandler) RegisterHandler(router gin.IRouter) {
	router.GET("/metrics", h.GetMetrics)
}
