package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/interfaces/http/handlers"
	"github.com/orris-inc/harborline/internal/interfaces/http/middleware"
	"github.com/orris-inc/harborline/internal/interfaces/http/routes"
	"github.com/orris-inc/harborline/internal/shared/config"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine        *gin.Engine
	cfg           config.ServerConfig
	logger        logger.Interface
	recordHandler *handlers.RecordHandler
	statusHandler *handlers.StatusHandler
}

// NewRouter creates a new HTTP router over the record gateway and controller.
func NewRouter(gateway *assets.Gateway, controller *assets.Controller, cfg config.ServerConfig, log logger.Interface) *Router {
	return &Router{
		engine:        gin.New(),
		cfg:           cfg,
		logger:        log,
		recordHandler: handlers.NewRecordHandler(gateway, controller, log),
		statusHandler: handlers.NewStatusHandler(controller, log),
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.Metrics())
	r.engine.Use(middleware.CORS(r.cfg.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.SetupRecordRoutes(r.engine, &routes.RecordRouteConfig{
		RecordHandler: r.recordHandler,
		StatusHandler: r.statusHandler,
	})
}

// GetEngine returns the gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
