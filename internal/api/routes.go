package api

import (
	"compsage/server/config"
	"compsage/server/internal/database"
	"compsage/server/internal/geocoding"
	"compsage/server/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func SetupRoutes(router *gin.Engine, db *database.Database, ingest *queue.IngestQueue, geocoder *geocoding.Geocoder, cfg *config.Config, logger *logrus.Logger) {
	handler := NewHandler(db, ingest, geocoder, cfg, logger)

	api := router.Group("/api")
	{
		api.GET("/health", handler.GetHealth)

		api.GET("/properties", handler.GetProperties)
		api.GET("/properties/:id", handler.GetProperty)
		api.POST("/import", handler.ImportProperties)

		api.GET("/stats", handler.GetStats)
		api.GET("/areas/:postal_prefix", handler.GetAreaStats)
		api.GET("/areas/:postal_prefix/boundary", handler.GetAreaBoundary)
		api.GET("/recent-sales", handler.GetRecentSales)
		api.POST("/update-coordinates", handler.UpdateCoordinates)

		api.POST("/comps/search", handler.SearchComps)
		api.POST("/comps/adjust", handler.AdjustComps)

		api.POST("/sessions", handler.SaveSession)
		api.GET("/sessions", handler.GetSessions)
		api.GET("/sessions/:id", handler.GetSession)
		api.DELETE("/sessions/:id", handler.DeleteSession)
	}
}
