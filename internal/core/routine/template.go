package routine

import (
	"skincare-routine/internal/pkg/common"
)

// RulesVersion 目前規則版本
const RulesVersion = "mock-1"

// TemplateNotes 模板附註
const TemplateNotes = "Avoid stacking strong AHA/BHA with retinoid on same night. Use vitamin C AM on non-exfoliation days."

// 步驟順序是輸出的一部分，不可調整
var (
	amTemplate = []common.StepType{
		common.StepCleanser,
		common.StepEssence,
		common.StepSerum,
		common.StepMoisturizer,
		common.StepSunscreen,
	}
	pmTemplate = []common.StepType{
		common.StepCleanser,
		common.StepEssence,
		common.StepSerumOrRetinoid,
		common.StepMoisturizer,
	}
)

// AMTemplate 早上模板的複本
func AMTemplate() []common.StepType {
	return append([]common.StepType(nil), amTemplate...)
}

// PMTemplate 晚上模板的複本
func PMTemplate() []common.StepType {
	return append([]common.StepType(nil), pmTemplate...)
}

// ResolveStepType 將模板佔位解析成具體步驟
// 懷孕安全或敏感肌都會否決 retinoid
func ResolveStepType(stepType common.StepType, profile common.SkinProfile, prefs common.Preferences) common.StepType {
	if stepType != common.StepSerumOrRetinoid {
		return stepType
	}
	if !prefs.Safety.PregnancySafe && !profile.Sensitive {
		return common.StepRetinoid
	}
	return common.StepSerum
}
