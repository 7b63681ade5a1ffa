package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skill-sync-backend/config"
	v1 "skill-sync-backend/internal/delivery/http/v1"
	"skill-sync-backend/internal/domain"
	"skill-sync-backend/internal/platform"
	"skill-sync-backend/internal/repository/memory"
	"skill-sync-backend/internal/repository/postgres"
	"skill-sync-backend/internal/usecase"
	"skill-sync-backend/pkg/audit"
	"skill-sync-backend/pkg/auth"
	"skill-sync-backend/pkg/database"
	"skill-sync-backend/pkg/logger"
	"skill-sync-backend/pkg/metrics"
	"skill-sync-backend/pkg/redis"
	"skill-sync-backend/pkg/validation"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.Environment)
	logger.Log.Info("Starting skill sync backend", "port", cfg.Port, "sync_mode", cfg.CertificationSyncMode)

	auditLog := audit.New("skill-sync-backend", cfg.Environment)
	defer auditLog.Sync()

	rec := metrics.Init(cfg.MetricsEnabled)

	ctx := context.Background()
	healthChecks := map[string]usecase.HealthCheckFunc{}

	// 3. Setup Storage
	var repo domain.SkillPlatformRepository
	if cfg.DBUrl != "" {
		dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		repo = postgres.NewSkillPlatformRepository(dbPool)
		healthChecks["database"] = dbPool.Ping
	} else {
		logger.Log.Warn("Using in-memory storage; data is lost on restart")
		repo = memory.NewSkillPlatformRepository()
	}

	// 4. Setup Redis (optional, rate limiter falls back to memory)
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
		} else {
			defer redis.Close()
			healthChecks["redis"] = redis.HealthCheck
		}
	}

	// 5. Setup Platform Adapters
	registry := platform.NewDefaultRegistry(platform.Options{
		LeetCodeGraphQLURL: cfg.LeetCodeGraphQLURL,
		HackerRankBaseURL:  cfg.HackerRankBaseURL,
		Timeout:            cfg.PlatformHTTPTimeout,
		Metrics:            rec,
	})

	// 6. Setup UseCases
	skillPlatformUC := usecase.NewSkillPlatformUsecase(repo, registry, validation.New(), cfg.CertificationSyncMode, rec, auditLog)
	healthUC := usecase.NewHealthUsecase(healthChecks)

	// 7. Setup Auth Provider (JWKS)
	var jwksProvider *auth.Provider
	if jwksURL := cfg.JWKSURL(); jwksURL != "" {
		jwksProvider = auth.NewProvider(jwksURL)
	}

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		SkillPlatformUC: skillPlatformUC,
		HealthUC:        healthUC,
		JWKSProvider:    jwksProvider,
		Config:          cfg,
		Metrics:         rec,
		Audit:           auditLog,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
