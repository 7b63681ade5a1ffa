package v1

import (
	"net/http"

	"skill-sync-backend/config"
	"skill-sync-backend/internal/delivery/http/middleware"
	"skill-sync-backend/internal/delivery/http/response"
	"skill-sync-backend/internal/domain"
	"skill-sync-backend/internal/usecase"
	"skill-sync-backend/pkg/audit"
	"skill-sync-backend/pkg/auth"
	"skill-sync-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	SkillPlatformUC domain.SkillPlatformUsecase
	HealthUC        usecase.HealthUsecase
	JWKSProvider    *auth.Provider // nil when SUPABASE_URL is unset
	Config          *config.Config
	Metrics         metrics.Recorder
	Audit           *audit.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware()) // CORS must be first so preflight never hits auth
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.Recovery())
	if gin.Mode() != gin.TestMode {
		r.Use(gin.Logger())
	}
	r.Use(middleware.RequestID())
	r.Use(metrics.HTTPMetricsMiddleware(deps.Metrics))
	r.Use(middleware.ErrorHandler())

	if _, ok := deps.Metrics.(*metrics.Metrics); ok {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status := deps.HealthUC.Check(c.Request.Context())
		response.Success(c, http.StatusOK, "System "+status["status"], status)
	})

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config, deps.Audit))
	{
		syncLimit := middleware.RateLimitMiddleware(
			middleware.SyncRateLimitConfig(deps.Config.SyncRateLimit, deps.Config.SyncRateWindowSeconds, deps.Audit),
		)
		NewSkillPlatformHandler(protected, deps.SkillPlatformUC, syncLimit)
	}

	return r
}
