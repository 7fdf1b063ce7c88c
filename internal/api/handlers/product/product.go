package product

import (
	"net/http"
	"strings"
	"time"

	"skincare-routine/internal/api/handlers"
	catalogService "skincare-routine/internal/core/catalog"
	"skincare-routine/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListQuery 產品列表查詢
type ListQuery struct {
	StepType   string `form:"step_type"`
	BudgetTier string `form:"budget_tier" binding:"omitempty,oneof=value balanced premium"`
	Flags      string `form:"flags"` // 逗號分隔
	Q          string `form:"q"`
}

// AlternativesQuery 替代品查詢，對應使用者偏好
type AlternativesQuery struct {
	BudgetTier       string `form:"budget_tier" binding:"omitempty,oneof=value balanced premium"`
	PregnancySafe    bool   `form:"pregnancy_safe"`
	FragranceFree    bool   `form:"fragrance_free"`
	EssentialOilFree bool   `form:"essential_oil_free"`
	AlcoholDenatFree bool   `form:"alcohol_denat_free"`
}

// ProductListResponse 產品列表響應
type ProductListResponse struct {
	Products       []common.Product `json:"products"`
	Count          int              `json:"count"`
	CatalogVersion string           `json:"catalog_version"`
}

// CacheInvalidator 目錄更新後需要清除的快取
type CacheInvalidator interface {
	InvalidateCache()
}

// Handler 產品目錄處理程序
type Handler struct {
	catalog         *catalogService.Service
	invalidator     CacheInvalidator
	maxAlternatives int
}

// NewHandler 創建新的產品處理程序，maxAlternatives 為 0 時不限制替代品數量
func NewHandler(catalog *catalogService.Service, invalidator CacheInvalidator, maxAlternatives int) *Handler {
	return &Handler{
		catalog:         catalog,
		invalidator:     invalidator,
		maxAlternatives: maxAlternatives,
	}
}

func listResponse(snap *catalogService.Snapshot, products []common.Product) ProductListResponse {
	if products == nil {
		products = []common.Product{}
	}
	return ProductListResponse{
		Products:       products,
		Count:          len(products),
		CatalogVersion: snap.Version(),
	}
}

// snapshot 取得單次請求使用的目錄；尚未載入時直接回應錯誤
func (h *Handler) snapshot(c *gin.Context) (*catalogService.Snapshot, bool) {
	snap, err := h.catalog.Snapshot()
	if err != nil {
		handlers.RespondError(c, err)
		return nil, false
	}
	return snap, true
}

// HandleList 依條件篩選產品
func (h *Handler) HandleList(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handlers.RespondInvalidRequest(c, err)
		return
	}
	if q.StepType != "" && !common.StepType(q.StepType).IsValid() {
		handlers.RespondError(c, common.ErrInvalidStepType)
		return
	}

	var flags []common.Flag
	for _, f := range strings.Split(q.Flags, ",") {
		if f = strings.TrimSpace(f); f != "" {
			flags = append(flags, common.Flag(f))
		}
	}

	products := snap.Filtered(catalogService.FilterOptions{
		StepType:      common.StepType(q.StepType),
		BudgetTier:    common.BudgetTier(q.BudgetTier),
		RequiredFlags: flags,
		SearchText:    q.Q,
	})

	c.JSON(http.StatusOK, listResponse(snap, products))
}

// HandleGet 依 id 查詢產品
func (h *Handler) HandleGet(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	product, ok := snap.ByID(c.Param("id"))
	if !ok {
		handlers.RespondError(c, common.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, product)
}

// HandleAlternatives 依偏好排序的替代品，最多回傳 maxAlternatives 筆
func (h *Handler) HandleAlternatives(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := snap.ByID(id); !ok {
		handlers.RespondError(c, common.ErrProductNotFound)
		return
	}

	var q AlternativesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handlers.RespondInvalidRequest(c, err)
		return
	}
	tier := common.BudgetTier(q.BudgetTier)
	if tier == "" {
		tier = common.BudgetBalanced
	}

	prefs := common.Preferences{
		BudgetTier: tier,
		Safety: common.SafetyToggles{
			PregnancySafe:    q.PregnancySafe,
			FragranceFree:    q.FragranceFree,
			EssentialOilFree: q.EssentialOilFree,
			AlcoholDenatFree: q.AlcoholDenatFree,
		},
	}

	alts := snap.Alternatives(id, prefs)
	if h.maxAlternatives > 0 && len(alts) > h.maxAlternatives {
		alts = alts[:h.maxAlternatives]
	}

	c.JSON(http.StatusOK, listResponse(snap, alts))
}

// HandleRetailLinks 依通路順序的購買連結
func (h *Handler) HandleRetailLinks(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := snap.ByID(id); !ok {
		handlers.RespondError(c, common.ErrProductNotFound)
		return
	}

	retailers := common.DefaultRetailerOrder
	if raw := c.Query("retailers"); raw != "" {
		retailers = nil
		for _, r := range strings.Split(raw, ",") {
			if r = strings.TrimSpace(r); r != "" {
				retailers = append(retailers, r)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": id,
		"links":      snap.RetailLinks(id, retailers),
	})
}

// HandleReload 重新載入目錄，失敗時保留目前的資料
func (h *Handler) HandleReload(c *gin.Context) {
	requestID := handlers.RequestID(c)

	if err := h.catalog.Load(c.Request.Context()); err != nil {
		handlers.RespondError(c, err)
		return
	}
	if h.invalidator != nil {
		h.invalidator.InvalidateCache()
	}

	common.LogInfo("產品目錄已重新載入",
		zap.String("request_id", requestID),
		zap.Int("products", h.catalog.Size()),
	)

	c.JSON(http.StatusOK, gin.H{
		"status":          "reloaded",
		"products":        h.catalog.Size(),
		"catalog_version": h.catalog.Version(),
		"loaded_at":       h.catalog.LoadedAt().Format(time.RFC3339),
	})
}
