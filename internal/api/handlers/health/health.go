package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"skincare-routine/internal/core/cache"
	catalogService "skincare-routine/internal/core/catalog"
	"skincare-routine/internal/infrastructure/config"
	"skincare-routine/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   *CatalogStatus         `json:"catalog,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// CatalogStatus 目錄狀態
type CatalogStatus struct {
	Version  string    `json:"version"`
	Products int       `json:"products"`
	LoadedAt time.Time `json:"loaded_at"`
	Error    string    `json:"error,omitempty"`
}

// Pinger 外部依賴的連線檢查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler 健康檢查處理器
type Handler struct {
	config  *config.Config
	catalog *catalogService.Service
	cache   *cache.Manager
	pingers map[string]Pinger
}

// NewHandler 創建健康檢查處理器，pingers 可為空
func NewHandler(cfg *config.Config, catalog *catalogService.Service, cacheManager *cache.Manager, pingers map[string]Pinger) *Handler {
	return &Handler{
		config:  cfg,
		catalog: catalog,
		cache:   cacheManager,
		pingers: pingers,
	}
}

func (h *Handler) catalogStatus() *CatalogStatus {
	status := &CatalogStatus{
		Version:  h.catalog.Version(),
		Products: h.catalog.Size(),
		LoadedAt: h.catalog.LoadedAt(),
	}
	if err := h.catalog.Ready(); err != nil {
		status.Error = err.Error()
	}
	return status
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Catalog: h.catalogStatus(),
	}
	if h.cache != nil {
		response.Cache = h.cache.GetStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 目錄已載入且外部依賴可連線才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if err := h.catalog.Ready(); err != nil {
		checks["catalog"] = err.Error()
		ready = false
	} else {
		checks["catalog"] = "ok"
	}

	for name, p := range h.pingers {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		err := p.Ping(ctx)
		cancel()
		if err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		common.LogWarn("Readiness check failed", zap.Any("checks", checks))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
