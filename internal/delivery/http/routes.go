package http

import (
	"github.com/gin-gonic/gin"
	"github.com/opticount/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		scan := v1.Group("/scan")
		{
			scan.POST("/match", handler.MatchBarcode)
		}

		counts := v1.Group("/counts")
		{
			counts.POST("", handler.SaveCount)
			counts.POST("/:id/photo", handler.UploadCountPhoto)
		}

		products := v1.Group("/products")
		{
			products.POST("/unlisted", handler.SaveUnlistedProduct)
		}

		v1.POST("/search", handler.ManualSearch)
		v1.GET("/brands", handler.Brands)
		v1.GET("/stats", handler.Stats)
	}

	return router
}
