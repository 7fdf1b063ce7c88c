package routine

import (
	"context"
	"fmt"

	"skincare-routine/internal/core/catalog"
	"skincare-routine/internal/pkg/common"

	"go.uber.org/zap"
)

// Catalog 引擎需要的目錄來源，每次產生只取一次 snapshot
type Catalog interface {
	Snapshot() (*catalog.Snapshot, error)
}

// Engine 規則式保養流程產生器，不持有可變狀態
type Engine struct {
	catalog Catalog
}

// NewEngine 創建產生器
func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Generate 依膚質與偏好產生完整的早晚流程
//
// 沒有合適產品時不會失敗：先忽略安全標籤退而求其次，仍沒有就略過該步驟。
// 只有目錄從未載入成功時才回傳錯誤。
func (e *Engine) Generate(ctx context.Context, profile common.SkinProfile, prefs common.Preferences) (common.Routine, error) {
	snap, err := e.catalog.Snapshot()
	if err != nil {
		return common.Routine{}, err
	}
	return e.GenerateFrom(ctx, snap, profile, prefs)
}

// GenerateFrom 在指定的目錄 snapshot 上產生流程，所有步驟都讀同一份目錄
func (e *Engine) GenerateFrom(ctx context.Context, snap *catalog.Snapshot, profile common.SkinProfile, prefs common.Preferences) (common.Routine, error) {
	if snap == nil {
		return common.Routine{}, catalog.ErrNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return common.Routine{}, err
	}

	am := buildSteps(snap, "am", amTemplate, profile, prefs)
	pm := buildSteps(snap, "pm", pmTemplate, profile, prefs)

	weekly := common.WeeklyTemplate()
	weekly.Notes = TemplateNotes

	common.LogDebug("Routine generated",
		zap.Int("am_steps", len(am)),
		zap.Int("pm_steps", len(pm)),
		zap.String("budget_tier", string(prefs.BudgetTier)),
		zap.String("catalog_version", snap.Version()),
	)

	return common.Routine{
		AM:             am,
		PM:             pm,
		Weekly:         weekly,
		RulesVersion:   RulesVersion,
		CatalogVersion: snap.Version(),
		Overrides:      map[common.StepType]string{},
		CompletedSteps: []string{},
	}, nil
}

// StepID 步驟識別碼，由時段、範本位置與實際步驟類型組成
func StepID(period string, slot int, stepType common.StepType) string {
	return fmt.Sprintf("%s-%d-%s", period, slot, stepType)
}

func buildSteps(snap *catalog.Snapshot, period string, template []common.StepType, profile common.SkinProfile, prefs common.Preferences) []common.RoutineStep {
	steps := make([]common.RoutineStep, 0, len(template))
	for i, slot := range template {
		stepType := ResolveStepType(slot, profile, prefs)

		product, fallback, ok := selectProduct(snap, stepType, profile, prefs)
		if !ok {
			common.LogWarn("No product for step, omitting",
				zap.String("step_type", string(stepType)),
			)
			continue
		}

		alternatives := make([]string, len(product.Alternatives))
		copy(alternatives, product.Alternatives)

		steps = append(steps, common.RoutineStep{
			ID:           StepID(period, i, stepType),
			StepType:     stepType,
			ProductID:    product.ID,
			Alternatives: alternatives,
			Explanation:  Explain(product, stepType, profile),
			UsedFallback: fallback,
		})
	}
	return steps
}

// selectProduct 選出分數最高的候選，同分取目錄中較前者
// 沒有符合標籤的候選時退回該步驟類型的第一個產品
func selectProduct(snap *catalog.Snapshot, stepType common.StepType, profile common.SkinProfile, prefs common.Preferences) (common.Product, bool, bool) {
	candidates := snap.Candidates(stepType, prefs.RequiredFlags())
	if len(candidates) == 0 {
		fallbacks := snap.ByStepType(stepType)
		if len(fallbacks) == 0 {
			return common.Product{}, false, false
		}
		common.LogDebug("No flag-compliant candidate, using fallback",
			zap.String("step_type", string(stepType)),
			zap.String("product_id", fallbacks[0].ID),
		)
		return fallbacks[0], true, true
	}

	best := candidates[0]
	bestScore := Score(best, profile, prefs)
	for _, p := range candidates[1:] {
		if s := Score(p, profile, prefs); s > bestScore {
			best, bestScore = p, s
		}
	}
	return best, false, true
}
