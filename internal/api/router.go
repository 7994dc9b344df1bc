package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pictune/pictune-api/internal/api/handlers"
	"github.com/pictune/pictune-api/internal/api/middleware"
	"github.com/pictune/pictune-api/internal/config"
	"github.com/pictune/pictune-api/internal/metrics"
)

func SetupRouter(cfg *config.Config, curator handlers.Curator, gate handlers.SessionRefresher, cloudwatch *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(middleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(middleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(middleware.RequestTracking())

	// CORS middleware
	router.Use(middleware.CORS())

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Curation pipeline
	playlistHandler := handlers.NewPlaylistHandler(cfg, curator, cloudwatch)
	router.POST("/generate-playlist", playlistHandler.Generate)

	// Artifact downloads
	downloadHandler := handlers.NewDownloadHandler(cfg.WorkDir)
	router.GET("/download/:session_id", downloadHandler.Playlist)
	router.GET("/download/image/:session_id", downloadHandler.Image)

	// Session maintenance
	sessionHandler := handlers.NewSessionHandler(gate)
	router.POST("/refresh-cookies", sessionHandler.RefreshCookies)

	return router
}
