package status

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hl7fileprocessor/internal/config"
	"hl7fileprocessor/internal/constants"
	"hl7fileprocessor/internal/logger"
	"hl7fileprocessor/pkg/health"
	"hl7fileprocessor/pkg/middleware"
	"hl7fileprocessor/pkg/ratelimit"
	"hl7fileprocessor/pkg/tracing"
)

type RouterConfig struct {
	Server         config.ServerConfig
	TracingEnabled bool
	Health         *health.CheckerRegistry
	Reports        ReportSource
	Logger         logger.Logger
	MetricsHandler http.Handler
}

// NewRouter builds the status engine. ctx bounds the rate limiter's
// background cleanup.
func NewRouter(ctx context.Context, cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if cfg.TracingEnabled {
		router.Use(tracing.GinMiddleware(constants.ServiceName))
	}

	router.Use(middleware.RecoveryMiddleware(cfg.Logger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(cfg.Logger))

	if cfg.Server.RateLimit.Enabled {
		router.Use(ratelimit.RateLimitMiddleware(ctx, cfg.Server.RateLimit))
		cfg.Logger.InfowCtx(ctx, "Rate limiting enabled", "rps", cfg.Server.RateLimit.RPS, "burst", cfg.Server.RateLimit.Burst)
	}

	registry := cfg.Health
	if registry == nil {
		registry = health.NewCheckerRegistry()
	}

	router.GET("/health", func(c *gin.Context) {
		checkCtx, cancel := context.WithTimeout(c.Request.Context(), constants.HealthCheckTimeout)
		defer cancel()

		h := registry.Check(checkCtx)
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, h)
	})

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	router.GET("/metrics", gin.WrapH(metricsHandler))

	NewHandler(cfg.Reports, cfg.Logger).RegisterRoutes(router)

	return router
}
