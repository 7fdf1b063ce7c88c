package api

import (
	"errors"
	"time"

	"skincare-routine/internal/api/handlers/health"
	productHandler "skincare-routine/internal/api/handlers/product"
	routineHandler "skincare-routine/internal/api/handlers/routine"
	"skincare-routine/internal/api/middleware"
	"skincare-routine/internal/core/cache"
	catalogService "skincare-routine/internal/core/catalog"
	routineService "skincare-routine/internal/core/routine"
	"skincare-routine/internal/infrastructure/config"
	"skincare-routine/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由需要的服務
type Services struct {
	Catalog *catalogService.Service
	Routine *routineService.Service
	Cache   *cache.Manager
	// Pingers 就緒檢查時要探測的外部依賴，例如 redis
	Pingers map[string]health.Pinger
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) (*gin.Engine, error) {
	if svc.Catalog == nil || svc.Routine == nil {
		return nil, errors.New("catalog and routine services are required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, svc.Catalog, svc.Cache, svc.Pingers)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	products := productHandler.NewHandler(svc.Catalog, svc.Routine, cfg.Catalog.MaxAlternatives)
	routines := routineHandler.NewHandler(svc.Routine)
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	// API 路由組
	api := router.Group("/api/v1")
	{
		// 無狀態產生
		api.POST("/routine", routines.HandleGenerate)

		userGroup := api.Group("/users/:user_id/routine")
		{
			userGroup.POST("", dedup.Handler(), routines.HandleGenerateForUser)
			userGroup.GET("", routines.HandleGet)
			userGroup.DELETE("", routines.HandleDelete)
			userGroup.PUT("/overrides/:step_type", dedup.Handler(), routines.HandleApplyOverride)
			userGroup.DELETE("/overrides/:step_type", routines.HandleRemoveOverride)
			userGroup.PUT("/steps/:step_id/complete", routines.HandleCompleteStep)
			userGroup.DELETE("/steps/:step_id/complete", routines.HandleUncompleteStep)
			userGroup.POST("/steps/:step_id/toggle", dedup.Handler(), routines.HandleToggleStep)
		}

		productGroup := api.Group("/products")
		{
			productGroup.GET("", products.HandleList)
			productGroup.GET("/:id", products.HandleGet)
			productGroup.GET("/:id/alternatives", products.HandleAlternatives)
			productGroup.GET("/:id/retail-links", products.HandleRetailLinks)
		}

		api.POST("/catalog/reload", products.HandleReload)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("cache_enabled", svc.Cache != nil),
		zap.Int("pingers", len(svc.Pingers)),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
