package api

import (
	"github.com/accessivision/backend/internal/api/handler"
	"github.com/accessivision/backend/internal/api/middleware"
	"github.com/accessivision/backend/internal/config"
	"github.com/accessivision/backend/internal/logger"
	"github.com/accessivision/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	auditService *service.AuditService,
	renovationService *service.RenovationService,
	cfg *config.Config,
	log *logger.Logger,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	auditHandler := handler.NewAuditHandler(auditService)
	renovationHandler := handler.NewRenovationHandler(renovationService)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Listing audit jobs
		v1.POST("/audits", auditHandler.CreateAudit)
		v1.GET("/audits/:id", auditHandler.GetAudit)

		// Single-photo analysis
		v1.POST("/analyze", auditHandler.Analyze)

		// On-demand renovation generation
		v1.POST("/renovations", renovationHandler.GenerateRenovation)
	}

	return r
}
