package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/crc-worker/internal/telemetry"
)

// SetupRoutes configures the operational routes.
func SetupRoutes(router *gin.Engine, handler *Handler, provider *telemetry.Provider) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	router.GET("/metrics", gin.WrapH(provider.Handler()))
}
