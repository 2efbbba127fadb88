// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/VelourMedia/pulsetrack-go/internal/application/container"
	"github.com/VelourMedia/pulsetrack-go/internal/presentation/http/handlers"
	"github.com/VelourMedia/pulsetrack-go/internal/presentation/http/middleware"
	"github.com/VelourMedia/pulsetrack-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(c *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Initialize handlers
	activityHandlers := handlers.NewActivityHandlers(c.SessionService, c.Logger, c.PerfTracker)
	lifecycleHandlers := handlers.NewLifecycleHandlers(c.LifecycleService, c.Logger, c.PerfTracker)
	chatHandlers := handlers.NewChatHandlers(c.ChatService, c.Logger, c.PerfTracker)
	configHandlers := handlers.NewConfigHandlers(c.Heuristics, c.Logger, c.PerfTracker)
	patternHandlers := handlers.NewPatternHandlers(c.Patterns, c.Logger, c.PerfTracker)
	healthHandlers := handlers.NewHealthHandlers(c.PerfTracker)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandlers.GetHealth)

		analytics := api.Group("/analytics")
		{
			analytics.POST("/activity", activityHandlers.RecordActivity)
			analytics.GET("/activity", activityHandlers.GetActivity)
			analytics.POST("/lifecycle", lifecycleHandlers.TriggerLifecycle)
			analytics.GET("/lifecycle", lifecycleHandlers.GetLifecycleStatus)
		}

		api.POST("/chat", chatHandlers.HandleChat)

		// Operator endpoints require a bearer JWT
		admin := api.Group("")
		admin.Use(middleware.AdminAuthMiddleware(config.AdminJWTSecret))
		{
			admin.GET("/config", configHandlers.GetConfig)
			admin.PUT("/config", configHandlers.UpdateConfig)
			admin.DELETE("/config", configHandlers.ResetConfig)
			admin.PUT("/logging", configHandlers.SetLogLevel)

			admin.GET("/patterns/stats", patternHandlers.GetStats)
			admin.GET("/patterns/similar", patternHandlers.FindSimilar)
		}
	}

	return r
}
