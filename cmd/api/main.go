package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skincare-routine/internal/api"
	"skincare-routine/internal/api/handlers/health"
	"skincare-routine/internal/core/cache"
	"skincare-routine/internal/core/catalog"
	"skincare-routine/internal/core/routine"
	"skincare-routine/internal/core/routine/store"
	"skincare-routine/internal/infrastructure/config"
	"skincare-routine/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 載入設定（.env 為選用）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.String("catalog_version", cfg.Catalog.Version),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	catalogSvc := catalog.NewService(
		catalog.NewSource(cfg.Catalog.Source, cfg.Catalog.FetchTimeout),
		cfg.Catalog.Version,
	)

	// 保養流程儲存：啟用 redis 時使用 redis，否則使用記憶體
	var routineStore store.Store
	pingers := map[string]health.Pinger{}
	if cfg.Redis.Enabled {
		redisStore := store.NewRedisStore(cfg.Redis)
		defer redisStore.Close()
		routineStore = redisStore
		pingers["redis"] = redisStore
	} else {
		routineStore = store.NewMemoryStore()
	}

	// 目錄載入與 redis 連線檢查同時進行
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.Catalog.FetchTimeout+5*time.Second)
	g, gctx := errgroup.WithContext(startupCtx)
	g.Go(func() error {
		if err := catalogSvc.Load(gctx); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		return nil
	})
	for name, p := range pingers {
		name, p := name, p
		g.Go(func() error {
			if err := p.Ping(gctx); err != nil {
				return fmt.Errorf("ping %s: %w", name, err)
			}
			return nil
		})
	}
	err = g.Wait()
	cancelStartup()
	if err != nil {
		common.LogFatal("Startup checks failed", zap.Error(err))
	}

	// 初始化快取，未啟用時為 nil
	cacheManager := cache.NewManager(cfg.Cache)
	if cacheManager != nil {
		defer cacheManager.Close()
	}

	routineSvc := routine.NewService(catalogSvc, cacheManager, routineStore)

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Services{
		Catalog: catalogSvc,
		Routine: routineSvc,
		Cache:   cacheManager,
		Pingers: pingers,
	})
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Int("products", catalogSvc.Size()),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
