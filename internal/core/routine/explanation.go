package routine

import (
	"strings"
	"unicode"

	"skincare-routine/internal/pkg/common"
)

// stepPhrase 每個步驟的基本說明
func stepPhrase(stepType common.StepType, p common.Product) string {
	switch stepType {
	case common.StepCleanser:
		return "Gentle cleansing for your skin type"
	case common.StepEssence:
		return "Hydrates and preps skin"
	case common.StepSerum:
		switch {
		case containsAny(p.InciHighlights, []string{"niacinamide"}):
			return "Controls oil and minimizes pores"
		case containsAny(p.InciHighlights, []string{"vitamin c"}):
			return "Brightens and evens skin tone"
		default:
			return "Targeted treatment for your concerns"
		}
	case common.StepMoisturizer:
		return "Seals in hydration and strengthens barrier"
	case common.StepSunscreen:
		return "Essential daily protection"
	case common.StepRetinoid:
		return "Anti-aging and pore refinement"
	case common.StepExfoliant:
		return "Weekly gentle resurfacing"
	default:
		return "Matches your skin profile"
	}
}

// Explain 產生步驟說明
// 各句以 ", " 串接後整句每個字首字母大寫
func Explain(p common.Product, stepType common.StepType, profile common.SkinProfile) string {
	reasons := []string{stepPhrase(stepType, p)}

	if profile.Sensitive && p.IsFragranceFree() {
		reasons = append(reasons, "fragrance-free for sensitivity")
	}
	if p.PriceBand == common.PriceLow {
		reasons = append(reasons, "great value option")
	}

	return capitalizeWords(strings.Join(reasons, ", "))
}

// capitalizeWords 非字母之後的字母大寫，其餘字母小寫，非字母原樣保留
// 因此連字號與撇號後也視為新字："fragrance-free" 成為 "Fragrance-Free"
func capitalizeWords(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	afterLetter := false
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r):
			afterLetter = false
			sb.WriteRune(r)
		case afterLetter:
			sb.WriteRune(unicode.ToLower(r))
		default:
			afterLetter = true
			sb.WriteRune(unicode.ToUpper(r))
		}
	}
	return sb.String()
}
