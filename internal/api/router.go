package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sysdb/sysdbd/internal/api/handlers"
	"github.com/sysdb/sysdbd/internal/middleware/auth"
	"github.com/sysdb/sysdbd/internal/middleware/logging"
	"github.com/sysdb/sysdbd/internal/middleware/recovery"
	"github.com/sysdb/sysdbd/internal/metrics"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// RouterConfig holds the configuration for the router.
type RouterConfig struct {
	// LoggingConfig is the configuration for request logging
	LoggingConfig logging.Config

	// RecoveryConfig is the configuration for panic recovery
	RecoveryConfig recovery.Config
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		LoggingConfig: logging.Config{
			SkipPaths:          []string{"/healthz", "/metrics"},
			MaxBodyLogSize:     4096,
			IncludeRequestBody: false,
		},
		RecoveryConfig: recovery.Config{
			DisableStackTrace: false,
		},
	}
}

// SetupRouter configures the admin HTTP surface: liveness/readiness,
// Prometheus exposition and JWT login. This surface is additive
// operational tooling — it never mutates the catalog. All store
// mutation flows through the socket protocol's STORE command.
func SetupRouter(
	engine *gin.Engine,
	log logger.Logger,
	config RouterConfig,
	healthHandler *handlers.HealthHandler,
	metricsHandler *handlers.MetricsHandler,
	authHandler *handlers.AuthHandler,
	authMiddleware *auth.JWTMiddleware,
	roleMiddleware *auth.RoleMiddleware,
	store metrics.StoreSizer,
) *gin.Engine {
	engine.Use(recovery.Handler(log, config.RecoveryConfig))
	engine.Use(logging.RequestLogger(log, config.LoggingConfig))

	healthHandler.RegisterHandler(engine)
	metricsHandler.RegisterHandler(engine)

	authGroup := engine.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)

	admin := engine.Group("/admin")
	admin.Use(authMiddleware.Authenticate())
	admin.GET("/stats", roleMiddleware.RequirePermission("read"), statsHandler(store))

	engine.NoRoute(noRouteHandler)

	return engine
}

// statsHandler reports the current catalog size, gated behind the
// admin JWT so it isn't exposed on the unauthenticated /metrics path.
func statsHandler(store metrics.StoreSizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"hosts":      store.CountHosts(),
			"services":   store.CountServices(),
			"metrics":    store.CountMetrics(),
			"attributes": store.CountAttributes(),
		})
	}
}

// noRouteHandler handles requests to non-existent routes.
func noRouteHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"status":  http.StatusNotFound,
		"code":    "NOT_FOUND",
		"message": "The requested resource was not found",
	})
}
