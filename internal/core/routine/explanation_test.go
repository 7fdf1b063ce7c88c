package routine

import (
	"testing"

	"skincare-routine/internal/pkg/common"
)

func TestExplain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		product  common.Product
		stepType common.StepType
		profile  common.SkinProfile
		want     string
	}{
		{
			// 連字號後也大寫
			name: "all clauses",
			product: common.Product{
				Flags: []common.Flag{common.FlagFragranceFree}, PriceBand: common.PriceLow,
			},
			stepType: common.StepCleanser,
			profile:  common.SkinProfile{Sensitive: true},
			want:     "Gentle Cleansing For Your Skin Type, Fragrance-Free For Sensitivity, Great Value Option",
		},
		{
			name:     "niacinamide serum",
			product:  common.Product{InciHighlights: []string{"Niacinamide 10%"}, PriceBand: common.PriceMid},
			stepType: common.StepSerum,
			want:     "Controls Oil And Minimizes Pores",
		},
		{
			name:     "vitamin c serum",
			product:  common.Product{InciHighlights: []string{"Vitamin C"}, PriceBand: common.PriceHigh},
			stepType: common.StepSerum,
			want:     "Brightens And Evens Skin Tone",
		},
		{
			name:     "generic serum without sensitivity clause",
			product:  common.Product{Flags: []common.Flag{common.FlagFragranceFree}, PriceBand: common.PriceMid},
			stepType: common.StepSerum,
			profile:  common.SkinProfile{Sensitive: false},
			want:     "Targeted Treatment For Your Concerns",
		},
		{
			name:     "retinoid",
			product:  common.Product{PriceBand: common.PriceLow},
			stepType: common.StepRetinoid,
			want:     "Anti-Aging And Pore Refinement, Great Value Option",
		},
		{
			name:     "sunscreen",
			product:  common.Product{PriceBand: common.PriceMid},
			stepType: common.StepSunscreen,
			want:     "Essential Daily Protection",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Explain(tc.product, tc.stepType, tc.profile); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCapitalizeWords(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                  "",
		"hello world":       "Hello World",
		"SPF  fifty":        "Spf  Fifty",
		"fragrance-free, x": "Fragrance-Free, X",
		"don't":             "Don'T",
		"ANTI-aging":        "Anti-Aging",
		"vitamin c 10%":     "Vitamin C 10%",
		"2nd coat":          "2Nd Coat",
	}
	for in, want := range cases {
		if got := capitalizeWords(in); got != want {
			t.Fatalf("capitalizeWords(%q): expected %q, got %q", in, want, got)
		}
	}
}
