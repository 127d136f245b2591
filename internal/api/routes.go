package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/spam-checker/infrastructure/health"
)

// SetupRoutes configures all API routes. metrics may be nil.
func SetupRoutes(router *gin.Engine, handler *Handler, metrics http.Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/health/live", health.GinLivenessHandler())
	router.GET("/health/ready", handler.readiness.GinHandler())
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/rules", handler.ListRules)                    // GET /api/v1/rules
	v1.POST("/classify", handler.Classify)                 // POST /api/v1/classify
	v1.POST("/consolidate", handler.Consolidate)           // POST /api/v1/consolidate
	v1.POST("/consolidate/csv", handler.ConsolidateUpload) // POST /api/v1/consolidate/csv
	v1.POST("/collate", handler.Collate)                   // POST /api/v1/collate
	v1.GET("/records", handler.ListRecords)                // GET /api/v1/records
}
