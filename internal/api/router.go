package api

import (
	"github.com/Conceptual-Machines/reel-director/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/reel-director/internal/api/middleware"
	"github.com/Conceptual-Machines/reel-director/internal/config"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"github.com/gin-gonic/gin"
)

// Dependencies are the services the router hands to its handlers
type Dependencies struct {
	Runner  handlers.RunExecutor
	Store   handlers.RunReader
	DB      handlers.Pinger
	Version string
}

func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.DB, cfg.MCPServerURL)
	router.GET("/health", healthHandler.HealthCheck)

	// MCP status endpoint
	router.GET("/mcp/status", handlers.MCPStatus(cfg.MCPServerURL))

	// Metrics endpoint
	runCounter := &handlers.RunCounter{}
	metricsHandler := handlers.NewMetricsHandler(deps.Version, cfg.MCPServerURL, runCounter)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	videoSpec := models.VideoSpec{Width: cfg.VideoWidth, Height: cfg.VideoHeight, FPS: cfg.VideoFPS}

	v1 := router.Group("/api/v1")
	v1.Use(apimiddleware.Auth(cfg.AuthMode, cfg.JWTSecret))
	{
		runHandler := handlers.NewRunHandler(deps.Runner, deps.Store, cfg.RunTimeout, runCounter)
		v1.POST("/runs", runHandler.CreateRun)
		v1.POST("/runs/stream", runHandler.StreamRun) // SSE progress
		v1.GET("/runs/ws", runHandler.RunSocket)      // Websocket progress
		v1.GET("/runs", runHandler.ListRuns)
		v1.GET("/runs/:id", runHandler.GetRun)

		contractsHandler := handlers.NewContractsHandler(videoSpec)
		v1.POST("/contracts/:kind/validate", contractsHandler.Validate)
	}

	return router
}
