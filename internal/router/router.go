package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"claimflow/internal/config"
	"claimflow/internal/handler"
	"claimflow/internal/metrics"
	"claimflow/internal/middleware"
)

// Deps are the handlers and cross-cutting collaborators the router mounts.
// Metrics and Tokens may be nil.
type Deps struct {
	Claims  *handler.ClaimHandler
	Health  *handler.HealthHandler
	Metrics *metrics.Metrics
	Tokens  middleware.TokenValidator
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger("/healthz", "/readyz", cfg.Metrics.Path))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinMiddleware())
	}

	// Health checks
	r.GET("/health", deps.Health.Liveness)
	r.GET("/healthz", deps.Health.Liveness)
	r.GET("/readyz", deps.Health.Readiness)

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.GET("/claims/supported-document-types", deps.Claims.SupportedDocumentTypes)

	claims := v1.Group("/claims")
	if cfg.Auth.Enabled && deps.Tokens != nil {
		claims.Use(middleware.Auth(deps.Tokens))
	}
	claims.POST("/process-claim", deps.Claims.Process)
	claims.GET("", deps.Claims.List)
	claims.GET("/export", deps.Claims.Export)
	claims.GET("/:id", deps.Claims.GetByID)
	claims.POST("/:id/reprocess", deps.Claims.Reprocess)

	r.NoRoute(func(c *gin.Context) {
		handler.RespondError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return r
}
