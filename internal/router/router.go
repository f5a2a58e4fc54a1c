package router

import (
	"github.com/gin-gonic/gin"

	"infograph/internal/handler"
	"infograph/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	corsOrigins []string,
	fileH *handler.FileHandler,
	extractH *handler.ExtractHandler,
	datasetH *handler.DatasetHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// File routes
	files := v1.Group("/files")
	files.POST("/upload", fileH.Upload)
	files.GET("", fileH.List)
	files.GET("/:id", fileH.GetByID)
	files.GET("/:id/pages", fileH.Pages)
	files.DELETE("/:id", fileH.Delete)

	// Identify and extract routes
	extract := v1.Group("/extract")
	extract.POST("/identify", extractH.Identify)
	extract.GET("/identifications/:id", extractH.GetIdentification)
	extract.POST("/run", extractH.Extract)

	// Dataset review routes
	datasets := v1.Group("/datasets")
	datasets.GET("", datasetH.List)
	datasets.GET("/:id", datasetH.GetByID)
	datasets.PATCH("/:id", datasetH.Update)

	// Export route
	v1.GET("/export", exportH.Download)

	return r
}
