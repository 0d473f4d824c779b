package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/harborline/internal/interfaces/http/handlers"
)

// RecordRouteConfig holds dependencies for the record and status routes.
type RecordRouteConfig struct {
	RecordHandler *handlers.RecordHandler
	StatusHandler *handlers.StatusHandler
}

// SetupRecordRoutes configures facility, vessel and status routes under /api.
func SetupRecordRoutes(engine *gin.Engine, cfg *RecordRouteConfig) {
	api := engine.Group("/api")
	{
		api.GET("/status", cfg.StatusHandler.Status)
		api.GET("/healthcheck", cfg.StatusHandler.Healthcheck)

		facilities := api.Group("/facilities")
		facilities.GET("", cfg.RecordHandler.ListFacilities)
		facilities.POST("", cfg.RecordHandler.CreateFacility)
		facilities.PUT("/:id", cfg.RecordHandler.UpdateFacility)
		facilities.DELETE("/:id", cfg.RecordHandler.DeleteFacility)

		vessels := api.Group("/vessels")
		vessels.GET("", cfg.RecordHandler.ListVessels)
		vessels.POST("", cfg.RecordHandler.CreateVessel)
		vessels.PUT("/:id", cfg.RecordHandler.UpdateVessel)
		vessels.DELETE("/:id", cfg.RecordHandler.DeleteVessel)
	}
}
