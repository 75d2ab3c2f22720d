package router

import (
	"github.com/gin-gonic/gin"

	"coursevault/internal/config"
	"coursevault/internal/handler"
	"coursevault/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	uploadH *handler.UploadHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// The sign endpoint requires a valid platform session token. Upload
	// authorization itself happens upstream in the platform.
	uploads := v1.Group("/uploads")
	uploads.Use(middleware.Auth(&cfg.JWT))
	uploads.POST("/sign", uploadH.Sign)

	return r
}
