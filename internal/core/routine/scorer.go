package routine

import (
	"strings"

	"skincare-routine/internal/pkg/common"
)

// 評分權重
const (
	WeightBudgetMatch   = 10.0
	WeightPerSafetyFlag = 5.0
	WeightSensitiveFit  = 3.0
	WeightAcneActive    = 3.0
	WeightPigmentActive = 3.0
	WeightTierExact     = 5.0
	WeightTierAdjacent  = 3.0
)

var (
	acneKeywords    = []string{"niacinamide", "salicylic"}
	pigmentKeywords = []string{"vitamin c", "ascorbic"}
)

// Score 候選產品對膚質與偏好的分數，純函式
//
// 預算相符的 +10 與後段依等級的加分會重複計算同一條件，兩者都保留。
func Score(p common.Product, profile common.SkinProfile, prefs common.Preferences) float64 {
	score := 0.0

	if p.MatchesBudget(prefs.BudgetTier) {
		score += WeightBudgetMatch
	}

	score += float64(p.MatchingFlagCount(prefs.RequiredFlags())) * WeightPerSafetyFlag

	if profile.Sensitive && p.IsFragranceFree() {
		score += WeightSensitiveFit
	}
	if profile.AcneProne && containsAny(p.InciHighlights, acneKeywords) {
		score += WeightAcneActive
	}
	if profile.PigmentationProne && containsAny(p.InciHighlights, pigmentKeywords) {
		score += WeightPigmentActive
	}

	score += tierBonus(prefs.BudgetTier, p.PriceBand)

	return score
}

// tierBonus 依預算等級的價格帶加分
func tierBonus(tier common.BudgetTier, band common.PriceBand) float64 {
	switch tier {
	case common.BudgetValue:
		if band == common.PriceLow {
			return WeightTierExact
		}
	case common.BudgetBalanced:
		if band == common.PriceMid {
			return WeightTierExact
		}
		if band == common.PriceLow {
			return WeightTierAdjacent
		}
	case common.BudgetPremium:
		if band == common.PriceHigh {
			return WeightTierExact
		}
		if band == common.PriceMid {
			return WeightTierAdjacent
		}
	}
	return 0
}

// containsAny 任一成分（不分大小寫）包含任一關鍵字
func containsAny(highlights []string, keywords []string) bool {
	for _, h := range highlights {
		lower := strings.ToLower(h)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
	}
	return false
}
