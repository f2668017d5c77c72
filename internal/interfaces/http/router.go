// Package http wires the gin route tree and server for the dictation API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/donovanp007/medscribe/internal/application/scribe"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/logging"
	"github.com/donovanp007/medscribe/internal/infrastructure/monitoring/prometheus"
	"github.com/donovanp007/medscribe/internal/interfaces/http/handlers"
	"github.com/donovanp007/medscribe/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the dependencies of the route tree.
type RouterConfig struct {
	Service *scribe.Service

	Logger    logging.Logger
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector

	// Mode is the gin mode: "debug", "release", or "test".
	Mode string

	CORS     *middleware.CORSConfig
	Checkers []handlers.HealthChecker

	// Version is reported by the liveness probe.
	Version string
}

// NewRouter builds the complete handler: middleware, health probes, the
// metrics endpoint, and the /api/v1 session and template routes.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))

	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsCfg = *cfg.CORS
	}
	r.Use(middleware.CORS(corsCfg))

	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	health := handlers.NewHealthHandler(cfg.Version, cfg.Checkers...)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	if cfg.Collector != nil {
		r.GET("/metrics", gin.WrapH(cfg.Collector.Handler()))
	}

	sessions := handlers.NewSessionHandler(cfg.Service, cfg.Logger)
	templates := handlers.NewTemplateHandler(cfg.Service)

	api := r.Group("/api/v1")
	{
		api.POST("/sessions", sessions.Create)
		api.GET("/sessions/:id/snapshot", sessions.Snapshot)
		api.POST("/sessions/:id/text", sessions.AddText)
		api.POST("/sessions/:id/flush", sessions.Flush)
		api.POST("/sessions/:id/reset", sessions.Reset)
		api.DELETE("/sessions/:id", sessions.Close)

		api.GET("/templates", templates.List)
		api.POST("/templates/suggest", templates.Suggest)
	}

	return r
}
