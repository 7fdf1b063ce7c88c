package routine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skincare-routine/internal/core/cache"
	"skincare-routine/internal/core/catalog"
	"skincare-routine/internal/core/routine/store"
	"skincare-routine/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrUnknownProduct 替換的產品不在目錄中
	ErrUnknownProduct = errors.New("product not in catalog")
	// ErrInvalidStepType 無效的步驟類型
	ErrInvalidStepType = errors.New("invalid step type")
	// ErrUnknownStep 流程中沒有此步驟
	ErrUnknownStep = errors.New("step not in routine")
)

// ProductCatalog 服務層需要的目錄查詢
type ProductCatalog interface {
	Catalog
	ByID(id string) (common.Product, bool)
}

// Service 保養流程服務：產生、快取、持久化與手動替換
type Service struct {
	engine  *Engine
	catalog ProductCatalog
	cache   *cache.Manager
	store   store.Store
}

// NewService 創建流程服務，cacheManager 可為 nil
func NewService(productCatalog ProductCatalog, cacheManager *cache.Manager, routineStore store.Store) *Service {
	return &Service{
		engine:  NewEngine(productCatalog),
		catalog: productCatalog,
		cache:   cacheManager,
		store:   routineStore,
	}
}

// cacheKey 由輸入與產生所用的目錄 snapshot 組成
func cacheKey(snap *catalog.Snapshot, profile common.SkinProfile, prefs common.Preferences) (string, error) {
	payload, err := common.ToJSON(struct {
		Profile     common.SkinProfile   `json:"profile"`
		BudgetTier  common.BudgetTier    `json:"budget_tier"`
		Safety      common.SafetyToggles `json:"safety"`
		Version     string               `json:"version"`
		LoadedAtUTC int64                `json:"loaded_at"`
	}{
		Profile:     profile,
		BudgetTier:  prefs.BudgetTier,
		Safety:      prefs.Safety,
		Version:     snap.Version(),
		LoadedAtUTC: snap.LoadedAt().UnixNano(),
	})
	if err != nil {
		return "", err
	}
	return "routine:" + common.HashBytes(payload), nil
}

// Generate 無狀態產生，命中快取時直接回傳
// 快取鍵與產生結果來自同一份 snapshot
func (s *Service) Generate(ctx context.Context, profile common.SkinProfile, prefs common.Preferences) (common.Routine, error) {
	snap, err := s.catalog.Snapshot()
	if err != nil {
		return common.Routine{}, err
	}

	key := ""
	if s.cache != nil {
		if key, err = cacheKey(snap, profile, prefs); err == nil {
			if data, err := s.cache.Get(ctx, key); err == nil {
				var cached common.Routine
				if err := common.ParseJSONBytes(data, &cached); err == nil {
					return cached, nil
				}
			}
		}
	}

	routine, err := s.engine.GenerateFrom(ctx, snap, profile, prefs)
	if err != nil {
		return common.Routine{}, err
	}

	if s.cache != nil && key != "" {
		if data, err := common.ToJSON(routine); err == nil {
			if err := s.cache.Set(ctx, key, data); err != nil {
				common.LogWarn("Failed to cache routine", zap.Error(err))
			}
		}
	}

	return routine, nil
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return common.NewValidationError("user id is required")
	}
	return nil
}

// GenerateForUser 產生並儲存為使用者目前的流程
func (s *Service) GenerateForUser(ctx context.Context, userID string, profile common.SkinProfile, prefs common.Preferences) (common.Routine, error) {
	if err := validateUserID(userID); err != nil {
		return common.Routine{}, err
	}
	routine, err := s.Generate(ctx, profile, prefs)
	if err != nil {
		return common.Routine{}, err
	}

	now := time.Now().UTC()
	routine.ID = common.GenerateUUID()
	routine.GeneratedAt = &now

	if err := s.store.Save(ctx, userID, routine); err != nil {
		return common.Routine{}, fmt.Errorf("failed to persist routine: %w", err)
	}

	common.LogInfo("保養流程已儲存",
		zap.String("user_id", userID),
		zap.String("routine_id", routine.ID),
		zap.Int("am_steps", len(routine.AM)),
		zap.Int("pm_steps", len(routine.PM)),
	)
	return routine, nil
}

// Current 使用者目前的流程
func (s *Service) Current(ctx context.Context, userID string) (common.Routine, error) {
	if err := validateUserID(userID); err != nil {
		return common.Routine{}, err
	}
	return s.store.Load(ctx, userID)
}

// ApplyOverride 記錄使用者替換的產品
func (s *Service) ApplyOverride(ctx context.Context, userID string, stepType common.StepType, productID string) (common.Routine, error) {
	if err := validateUserID(userID); err != nil {
		return common.Routine{}, err
	}
	if !stepType.IsValid() {
		return common.Routine{}, fmt.Errorf("%w: %q", ErrInvalidStepType, stepType)
	}
	if _, ok := s.catalog.ByID(productID); !ok {
		return common.Routine{}, fmt.Errorf("%w: %q", ErrUnknownProduct, productID)
	}

	current, err := s.store.Load(ctx, userID)
	if err != nil {
		return common.Routine{}, err
	}

	updated := current.WithOverride(stepType, productID)
	if err := s.store.Save(ctx, userID, updated); err != nil {
		return common.Routine{}, fmt.Errorf("failed to persist override: %w", err)
	}

	common.LogInfo("Override applied",
		zap.String("user_id", userID),
		zap.String("step_type", string(stepType)),
		zap.String("product_id", productID),
	)
	return updated, nil
}

// RemoveOverride 移除替換，回到產生的產品
func (s *Service) RemoveOverride(ctx context.Context, userID string, stepType common.StepType) (common.Routine, error) {
	if err := validateUserID(userID); err != nil {
		return common.Routine{}, err
	}
	if !stepType.IsValid() {
		return common.Routine{}, fmt.Errorf("%w: %q", ErrInvalidStepType, stepType)
	}
	current, err := s.store.Load(ctx, userID)
	if err != nil {
		return common.Routine{}, err
	}

	updated := current.WithoutOverride(stepType)
	if err := s.store.Save(ctx, userID, updated); err != nil {
		return common.Routine{}, fmt.Errorf("failed to persist override removal: %w", err)
	}
	return updated, nil
}

// Delete 刪除使用者目前的流程，連同替換與完成紀錄
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if _, err := s.store.Load(ctx, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	common.LogInfo("保養流程已刪除", zap.String("user_id", userID))
	return nil
}

// SetStepCompleted 標記或取消步驟完成，重複標記不改變結果
func (s *Service) SetStepCompleted(ctx context.Context, userID, stepID string, completed bool) (common.Routine, error) {
	return s.updateCompletion(ctx, userID, stepID, func(common.Routine) bool { return completed })
}

// ToggleStepCompletion 切換步驟完成狀態
func (s *Service) ToggleStepCompletion(ctx context.Context, userID, stepID string) (common.Routine, error) {
	return s.updateCompletion(ctx, userID, stepID, func(r common.Routine) bool { return !r.IsStepCompleted(stepID) })
}

func (s *Service) updateCompletion(ctx context.Context, userID, stepID string, next func(common.Routine) bool) (common.Routine, error) {
	if err := validateUserID(userID); err != nil {
		return common.Routine{}, err
	}
	current, err := s.store.Load(ctx, userID)
	if err != nil {
		return common.Routine{}, err
	}
	if !current.HasStep(stepID) {
		return common.Routine{}, fmt.Errorf("%w: %q", ErrUnknownStep, stepID)
	}

	completed := next(current)
	updated := current.WithStepCompleted(stepID, completed)
	if err := s.store.Save(ctx, userID, updated); err != nil {
		return common.Routine{}, fmt.Errorf("failed to persist step completion: %w", err)
	}

	common.LogDebug("Step completion updated",
		zap.String("user_id", userID),
		zap.String("step_id", stepID),
		zap.Bool("completed", completed),
	)
	return updated, nil
}

// CompletedSteps 使用者目前流程已完成的步驟 ID
func (s *Service) CompletedSteps(ctx context.Context, userID string) ([]string, error) {
	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(current.CompletedSteps))
	copy(out, current.CompletedSteps)
	return out, nil
}

// InvalidateCache 目錄重新載入後清除快取
func (s *Service) InvalidateCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}
