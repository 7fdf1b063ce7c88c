package common

import (
	"sort"
	"time"
)

// StepType 保養步驟類型
type StepType string

const (
	StepCleanser    StepType = "cleanser"
	StepEssence     StepType = "essence"
	StepSerum       StepType = "serum"
	StepMoisturizer StepType = "moisturizer"
	StepSunscreen   StepType = "sunscreen"
	StepRetinoid    StepType = "retinoid"
	StepExfoliant   StepType = "exfoliant"
	StepMask        StepType = "mask"

	// StepSerumOrRetinoid 只出現在模板中，產生時會解析成 serum 或 retinoid
	StepSerumOrRetinoid StepType = "serum_or_retinoid"
)

// StepTypes 產品可用的步驟類型
var StepTypes = []StepType{
	StepCleanser, StepEssence, StepSerum, StepMoisturizer,
	StepSunscreen, StepRetinoid, StepExfoliant, StepMask,
}

// IsValid 檢查是否為產品可用的步驟類型
func (s StepType) IsValid() bool {
	for _, st := range StepTypes {
		if st == s {
			return true
		}
	}
	return false
}

// Flag 安全標籤
type Flag string

const (
	FlagFragranceFree    Flag = "fragrance_free"
	FlagEssentialOilFree Flag = "eo_free"
	FlagAlcoholDenatFree Flag = "alcohol_denat_free"
	FlagPregnancySafe    Flag = "pregnancy_safe"
)

// AllFlags 所有安全標籤
var AllFlags = []Flag{FlagFragranceFree, FlagEssentialOilFree, FlagAlcoholDenatFree, FlagPregnancySafe}

// PriceBand 價格帶
type PriceBand string

const (
	PriceLow  PriceBand = "$"
	PriceMid  PriceBand = "$$"
	PriceHigh PriceBand = "$$$"
)

// BudgetTier 預算等級，依價格由低到高
type BudgetTier string

const (
	BudgetValue    BudgetTier = "value"
	BudgetBalanced BudgetTier = "balanced"
	BudgetPremium  BudgetTier = "premium"
)

// PriceBands 該預算等級允許的價格帶
func (b BudgetTier) PriceBands() []PriceBand {
	switch b {
	case BudgetValue:
		return []PriceBand{PriceLow}
	case BudgetBalanced:
		return []PriceBand{PriceLow, PriceMid}
	case BudgetPremium:
		return []PriceBand{PriceMid, PriceHigh}
	default:
		return nil
	}
}

// Allows 價格帶是否落在預算內
func (b BudgetTier) Allows(band PriceBand) bool {
	for _, pb := range b.PriceBands() {
		if pb == band {
			return true
		}
	}
	return false
}

// Product 目錄中的產品，載入後不可變
type Product struct {
	ID             string    `json:"id" yaml:"id"`
	Brand          string    `json:"brand" yaml:"brand"`
	Name           string    `json:"name" yaml:"name"`
	StepType       StepType  `json:"step_type" yaml:"step_type"`
	Flags          []Flag    `json:"flags" yaml:"flags"`
	InciHighlights []string  `json:"inci_highlights" yaml:"inci_highlights"`
	PriceBand      PriceBand `json:"price_band" yaml:"price_band"`
	Images         []string  `json:"images,omitempty" yaml:"images,omitempty"`
	Alternatives   []string  `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

// HasFlag 是否帶有指定標籤
func (p Product) HasFlag(flag Flag) bool {
	for _, f := range p.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// IsFragranceFree 無香料
func (p Product) IsFragranceFree() bool {
	return p.HasFlag(FlagFragranceFree)
}

// HasAllFlags 產品標籤是否為 required 的超集合
func (p Product) HasAllFlags(required []Flag) bool {
	for _, f := range required {
		if !p.HasFlag(f) {
			return false
		}
	}
	return true
}

// MatchingFlagCount 產品標籤與 required 的交集數量
func (p Product) MatchingFlagCount(required []Flag) int {
	count := 0
	for _, f := range required {
		if p.HasFlag(f) {
			count++
		}
	}
	return count
}

// MatchesBudget 價格帶是否符合預算等級
func (p Product) MatchesBudget(tier BudgetTier) bool {
	return tier.Allows(p.PriceBand)
}

// BaseType 基礎膚質
type BaseType string

const (
	BaseOily        BaseType = "oily"
	BaseCombination BaseType = "combination"
	BaseDry         BaseType = "dry"
	BaseNormal      BaseType = "normal"
)

// SkinProfile 膚質檔案
type SkinProfile struct {
	BaseType          BaseType `json:"base_type" binding:"required,oneof=oily combination dry normal"`
	Sensitive         bool     `json:"sensitive"`
	AcneProne         bool     `json:"acne_prone"`
	PigmentationProne bool     `json:"pigmentation_prone"`
	Source            string   `json:"source,omitempty" binding:"omitempty,oneof=questionnaire scan mixed"`
}

// SafetyToggles 安全偏好開關
type SafetyToggles struct {
	PregnancySafe    bool `json:"pregnancy_safe"`
	FragranceFree    bool `json:"fragrance_free"`
	EssentialOilFree bool `json:"essential_oil_free"`
	AlcoholDenatFree bool `json:"alcohol_denat_free"`
}

// RequiredFlags 將開關轉成產品必須具備的標籤集合
func (s SafetyToggles) RequiredFlags() []Flag {
	flags := make([]Flag, 0, len(AllFlags))
	if s.FragranceFree {
		flags = append(flags, FlagFragranceFree)
	}
	if s.EssentialOilFree {
		flags = append(flags, FlagEssentialOilFree)
	}
	if s.AlcoholDenatFree {
		flags = append(flags, FlagAlcoholDenatFree)
	}
	if s.PregnancySafe {
		flags = append(flags, FlagPregnancySafe)
	}
	return flags
}

// DefaultRetailerOrder 預設通路順序
var DefaultRetailerOrder = []string{"Amazon", "Sephora", "Olive Young", "YesStyle", "TikTok Shop"}

// Preferences 使用者偏好
type Preferences struct {
	BudgetTier    BudgetTier    `json:"budget_tier" binding:"required,oneof=value balanced premium"`
	Safety        SafetyToggles `json:"safety"`
	RetailerOrder []string      `json:"retailer_order,omitempty"`
}

// RequiredFlags 偏好推導出的必要標籤
func (p Preferences) RequiredFlags() []Flag {
	return p.Safety.RequiredFlags()
}

// RoutineStep 保養流程中的一步
// ID 在同一份流程內唯一，重新產生相同輸入時不變
type RoutineStep struct {
	ID           string   `json:"id"`
	StepType     StepType `json:"step_type"`
	ProductID    string   `json:"product_id"`
	Alternatives []string `json:"alternatives"`
	Explanation  string   `json:"explanation"`
	UsedFallback bool     `json:"used_fallback,omitempty"`
}

// WeeklyPlan 每週排程模板
type WeeklyPlan struct {
	RetinoidNights []string `json:"retinoid_nights"`
	ExfoliantDays  []string `json:"exfoliant_days"`
	MaskDays       []string `json:"mask_days"`
	Notes          string   `json:"notes,omitempty"`
}

// WeeklyTemplate 固定的每週排程
func WeeklyTemplate() WeeklyPlan {
	return WeeklyPlan{
		RetinoidNights: []string{"Mon", "Thu"},
		ExfoliantDays:  []string{"Wed"},
		MaskDays:       []string{"Fri"},
	}
}

// IsScheduledDay 指定日是否排了該類型
func (w WeeklyPlan) IsScheduledDay(day string, kind StepType) bool {
	var days []string
	switch kind {
	case StepRetinoid:
		days = w.RetinoidNights
	case StepExfoliant:
		days = w.ExfoliantDays
	case StepMask:
		days = w.MaskDays
	default:
		return false
	}
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// Routine 產生的保養流程
// Overrides 為使用者手動替換的產品，優先於產生結果
// CompletedSteps 為已完成的步驟 ID，保持排序
type Routine struct {
	ID             string              `json:"id,omitempty"`
	AM             []RoutineStep       `json:"am"`
	PM             []RoutineStep       `json:"pm"`
	Weekly         WeeklyPlan          `json:"weekly"`
	RulesVersion   string              `json:"rules_version"`
	CatalogVersion string              `json:"catalog_version"`
	Overrides      map[StepType]string `json:"overrides"`
	CompletedSteps []string            `json:"completed_steps"`
	GeneratedAt    *time.Time          `json:"generated_at,omitempty"`
}

// HasStep 流程中是否有此 ID 的步驟
func (r Routine) HasStep(stepID string) bool {
	for _, steps := range [][]RoutineStep{r.AM, r.PM} {
		for _, s := range steps {
			if s.ID == stepID {
				return true
			}
		}
	}
	return false
}

// IsStepCompleted 步驟是否已標記完成
func (r Routine) IsStepCompleted(stepID string) bool {
	i := sort.SearchStrings(r.CompletedSteps, stepID)
	return i < len(r.CompletedSteps) && r.CompletedSteps[i] == stepID
}

// WithStepCompleted 回傳設定完成狀態後的新 Routine，不修改原值
func (r Routine) WithStepCompleted(stepID string, completed bool) Routine {
	steps := make([]string, 0, len(r.CompletedSteps)+1)
	for _, id := range r.CompletedSteps {
		if id != stepID {
			steps = append(steps, id)
		}
	}
	if completed {
		steps = append(steps, stepID)
		sort.Strings(steps)
	}
	r.CompletedSteps = steps
	return r
}

// Step 找出 AM 或 PM 中的步驟
func (r Routine) Step(stepType StepType, am bool) (RoutineStep, bool) {
	steps := r.PM
	if am {
		steps = r.AM
	}
	for _, s := range steps {
		if s.StepType == stepType {
			return s, true
		}
	}
	return RoutineStep{}, false
}

// HasOverride 是否有手動替換
func (r Routine) HasOverride(stepType StepType) bool {
	_, ok := r.Overrides[stepType]
	return ok
}

// EffectiveProductID 替換優先，否則使用產生的產品
func (r Routine) EffectiveProductID(stepType StepType, am bool) (string, bool) {
	if id, ok := r.Overrides[stepType]; ok {
		return id, true
	}
	step, ok := r.Step(stepType, am)
	if !ok {
		return "", false
	}
	return step.ProductID, true
}

// WithOverride 回傳加上替換的新 Routine，不修改原值
func (r Routine) WithOverride(stepType StepType, productID string) Routine {
	overrides := make(map[StepType]string, len(r.Overrides)+1)
	for k, v := range r.Overrides {
		overrides[k] = v
	}
	overrides[stepType] = productID
	r.Overrides = overrides
	return r
}

// WithoutOverride 回傳移除替換的新 Routine
func (r Routine) WithoutOverride(stepType StepType) Routine {
	overrides := make(map[StepType]string, len(r.Overrides))
	for k, v := range r.Overrides {
		if k != stepType {
			overrides[k] = v
		}
	}
	r.Overrides = overrides
	return r
}

// RetailLink 通路連結
type RetailLink struct {
	Retailer   string `json:"retailer"`
	URL        string `json:"url"`
	PriceRange string `json:"price_range"`
	Currency   string `json:"currency"`
}
