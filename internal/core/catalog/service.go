package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"skincare-routine/internal/pkg/common"

	"go.uber.org/zap"
)

// Snapshot 一次成功載入的目錄，建立後不再修改
// 單次查詢需要一致的目錄時先取得 Snapshot 再在其上查詢
type Snapshot struct {
	products []common.Product
	byID     map[string]int
	version  string
	loadedAt time.Time
}

// Service 產品目錄查詢服務
// 查詢只讀取目前的 snapshot，重新載入以指標交換完成
type Service struct {
	source  Source
	version string

	current atomic.Pointer[Snapshot]

	mu      sync.Mutex // 序列化載入
	lastErr error
}

// FilterOptions 篩選條件，零值代表不限制
type FilterOptions struct {
	StepType      common.StepType
	BudgetTier    common.BudgetTier
	RequiredFlags []common.Flag
	SearchText    string
}

// NewService 創建新的目錄服務，需呼叫 Load 後才有資料
func NewService(source Source, version string) *Service {
	return &Service{
		source:  source,
		version: version,
	}
}

// Load 從來源載入完整目錄；失敗時保留先前的 snapshot
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	products, err := s.source.Load(ctx)
	if err == nil {
		err = validateProducts(products)
	}
	if err != nil {
		s.lastErr = err
		common.LogError("Failed to load catalog",
			zap.Error(err),
			zap.String("catalog_version", s.version),
			zap.Bool("has_previous_snapshot", s.current.Load() != nil),
		)
		return err
	}

	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}

	s.current.Store(&Snapshot{
		products: products,
		byID:     byID,
		version:  s.version,
		loadedAt: time.Now(),
	})
	s.lastErr = nil

	common.LogInfo("產品目錄已載入",
		zap.Int("products", len(products)),
		zap.String("catalog_version", s.version),
		zap.Duration("耗時", time.Since(start)),
	)

	return nil
}

// Ready 目錄是否可查詢；從未載入成功時回傳最後一次的載入錯誤
func (s *Service) Ready() error {
	if s.current.Load() != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr != nil {
		return s.lastErr
	}
	return ErrNotLoaded
}

// Snapshot 目前的目錄；尚未就緒時回傳 Ready 的錯誤
func (s *Service) Snapshot() (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return nil, s.Ready()
}

// Version 目錄版本
func (s *Service) Version() string {
	return s.version
}

// Size 目前目錄的產品數量
func (s *Service) Size() int {
	return len(s.current.Load().list())
}

// LoadedAt 目前 snapshot 的載入時間
func (s *Service) LoadedAt() time.Time {
	return s.current.Load().LoadedAt()
}

// Products 完整產品清單（依目錄順序）
func (s *Service) Products() []common.Product {
	return s.current.Load().Products()
}

// ByID 依 id 精確查詢
func (s *Service) ByID(id string) (common.Product, bool) {
	return s.current.Load().ByID(id)
}

// ByStepType 指定步驟類型的所有產品，保持目錄順序
func (s *Service) ByStepType(stepType common.StepType) []common.Product {
	return s.current.Load().ByStepType(stepType)
}

// Candidates 指定步驟類型且標籤為 required 超集合的產品
func (s *Service) Candidates(stepType common.StepType, required []common.Flag) []common.Product {
	return s.current.Load().Candidates(stepType, required)
}

// Filtered 依條件篩選
func (s *Service) Filtered(opts FilterOptions) []common.Product {
	return s.current.Load().Filtered(opts)
}

// Alternatives 產品的替代品
func (s *Service) Alternatives(productID string, prefs common.Preferences) []common.Product {
	return s.current.Load().Alternatives(productID, prefs)
}

// RetailLinks 依通路順序產生購買連結，未知產品回傳空清單
func (s *Service) RetailLinks(productID string, retailerOrder []string) []common.RetailLink {
	return s.current.Load().RetailLinks(productID, retailerOrder)
}

// nil 的 Snapshot 視為空目錄

func (snap *Snapshot) list() []common.Product {
	if snap == nil {
		return nil
	}
	return snap.products
}

// Version 載入時的目錄版本
func (snap *Snapshot) Version() string {
	if snap == nil {
		return ""
	}
	return snap.version
}

// LoadedAt 載入時間
func (snap *Snapshot) LoadedAt() time.Time {
	if snap == nil {
		return time.Time{}
	}
	return snap.loadedAt
}

// Products 產品清單的副本
func (snap *Snapshot) Products() []common.Product {
	products := snap.list()
	out := make([]common.Product, len(products))
	copy(out, products)
	return out
}

// ByID 依 id 精確查詢
func (snap *Snapshot) ByID(id string) (common.Product, bool) {
	if snap == nil {
		return common.Product{}, false
	}
	i, ok := snap.byID[id]
	if !ok {
		return common.Product{}, false
	}
	return snap.products[i], true
}

// ByStepType 指定步驟類型的所有產品，保持目錄順序
func (snap *Snapshot) ByStepType(stepType common.StepType) []common.Product {
	var out []common.Product
	for _, p := range snap.list() {
		if p.StepType == stepType {
			out = append(out, p)
		}
	}
	return out
}

// Candidates 指定步驟類型且標籤為 required 超集合的產品
func (snap *Snapshot) Candidates(stepType common.StepType, required []common.Flag) []common.Product {
	var out []common.Product
	for _, p := range snap.list() {
		if p.StepType == stepType && p.HasAllFlags(required) {
			out = append(out, p)
		}
	}
	return out
}

// Filtered 依條件篩選
// SearchText 非空時只比對品牌、名稱與成分，其他條件不生效
func (snap *Snapshot) Filtered(opts FilterOptions) []common.Product {
	var out []common.Product
	search := strings.ToLower(strings.TrimSpace(opts.SearchText))

	for _, p := range snap.list() {
		if search != "" {
			if matchesSearch(p, search) {
				out = append(out, p)
			}
			continue
		}
		if opts.StepType != "" && p.StepType != opts.StepType {
			continue
		}
		if opts.BudgetTier != "" && !p.MatchesBudget(opts.BudgetTier) {
			continue
		}
		if !p.HasAllFlags(opts.RequiredFlags) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p common.Product, search string) bool {
	if strings.Contains(strings.ToLower(p.Brand), search) ||
		strings.Contains(strings.ToLower(p.Name), search) {
		return true
	}
	for _, inci := range p.InciHighlights {
		if strings.Contains(strings.ToLower(inci), search) {
			return true
		}
	}
	return false
}

// Alternatives 產品的替代品
// 先過濾必要標籤，再依預算相符、標籤交集數排序；同分維持目錄順序
func (snap *Snapshot) Alternatives(productID string, prefs common.Preferences) []common.Product {
	product, ok := snap.ByID(productID)
	if !ok || len(product.Alternatives) == 0 {
		return nil
	}

	required := prefs.RequiredFlags()
	var alts []common.Product
	for _, id := range product.Alternatives {
		alt, ok := snap.ByID(id)
		if !ok || !alt.HasAllFlags(required) {
			continue
		}
		alts = append(alts, alt)
	}

	sort.SliceStable(alts, func(i, j int) bool {
		bi := alts[i].MatchesBudget(prefs.BudgetTier)
		bj := alts[j].MatchesBudget(prefs.BudgetTier)
		if bi != bj {
			return bi
		}
		return alts[i].MatchingFlagCount(required) > alts[j].MatchingFlagCount(required)
	})

	return alts
}

// retailerBaseURLs 各通路的商品網址前綴
var retailerBaseURLs = map[string]string{
	"Amazon":      "https://amazon.com/dp/",
	"Sephora":     "https://sephora.com/product/",
	"Olive Young": "https://oliveyoung.com/store/goods/",
	"YesStyle":    "https://yesstyle.com/en/",
	"TikTok Shop": "https://shop.tiktok.com/item/",
}

const defaultRetailerBaseURL = "https://example.com/product/"

// priceRange 價格帶對應的美元區間
func priceRange(band common.PriceBand) string {
	switch band {
	case common.PriceLow:
		return "8-25"
	case common.PriceMid:
		return "25-60"
	case common.PriceHigh:
		return "60-120"
	default:
		return "15-45"
	}
}

// RetailLinks 依通路順序產生購買連結，未知產品回傳空清單
func (snap *Snapshot) RetailLinks(productID string, retailerOrder []string) []common.RetailLink {
	product, ok := snap.ByID(productID)
	if !ok {
		return nil
	}

	links := make([]common.RetailLink, 0, len(retailerOrder))
	for _, retailer := range retailerOrder {
		base, ok := retailerBaseURLs[retailer]
		if !ok {
			base = defaultRetailerBaseURL
		}
		links = append(links, common.RetailLink{
			Retailer:   retailer,
			URL:        fmt.Sprintf("%s%s", base, product.ID),
			PriceRange: priceRange(product.PriceBand),
			Currency:   "USD",
		})
	}
	return links
}
