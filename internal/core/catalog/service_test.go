package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"skincare-routine/internal/pkg/common"
)

func testProducts() []common.Product {
	return []common.Product{
		{
			ID: "c1", Brand: "CloudSkin", Name: "Gentle Cleanser", StepType: common.StepCleanser,
			Flags: []common.Flag{common.FlagFragranceFree}, InciHighlights: []string{"Glycerin"},
			PriceBand: common.PriceLow, Alternatives: []string{"c2", "c3", "missing"},
		},
		{
			ID: "c2", Brand: "PureOil", Name: "Oil Cleanser", StepType: common.StepCleanser,
			Flags:          []common.Flag{common.FlagFragranceFree, common.FlagEssentialOilFree},
			InciHighlights: []string{"Jojoba Oil"}, PriceBand: common.PriceHigh,
		},
		{
			ID: "c3", Brand: "FoamCo", Name: "Foam Wash", StepType: common.StepCleanser,
			Flags: []common.Flag{common.FlagFragranceFree}, InciHighlights: []string{"Salicylic Acid"},
			PriceBand: common.PriceLow,
		},
		{
			ID: "s1", Brand: "BalanceRx", Name: "Niacinamide 5%", StepType: common.StepSerum,
			Flags: []common.Flag{common.FlagPregnancySafe}, InciHighlights: []string{"Niacinamide"},
			PriceBand: common.PriceMid,
		},
	}
}

func loadedService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(StaticSource(testProducts()), "v1")
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc
}

func ids(products []common.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func equalIDs(got []common.Product, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func TestFileSourceJSONAndYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "catalog.json")
	yamlPath := filepath.Join(dir, "catalog.yaml")

	if err := os.WriteFile(jsonPath, []byte(`[{"id":"c1","brand":"A","name":"B","step_type":"cleanser","flags":["fragrance_free"],"inci_highlights":[],"price_band":"$"}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	yamlDoc := `
- id: c1
  brand: A
  name: B
  step_type: cleanser
  flags: [fragrance_free, eo_free]
  inci_highlights: [Glycerin]
  price_band: "$$"
  alternatives: [c2]
`
	if err := os.WriteFile(yamlPath, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{jsonPath, yamlPath} {
		products, err := (&FileSource{Path: path}).Load(context.Background())
		if err != nil {
			t.Fatalf("load %s: %v", path, err)
		}
		if len(products) != 1 || products[0].ID != "c1" || !products[0].IsFragranceFree() {
			t.Fatalf("unexpected products from %s: %+v", path, products)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		svc := NewService(&FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}, "v1")
		err := svc.Load(context.Background())
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if !errors.Is(svc.Ready(), ErrNotFound) {
			t.Fatalf("Ready should report last load error, got %v", svc.Ready())
		}
	})

	t.Run("invalid data", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte(`{not json`), 0o600); err != nil {
			t.Fatal(err)
		}
		err := NewService(&FileSource{Path: path}, "v1").Load(context.Background())
		if !errors.Is(err, ErrInvalidData) {
			t.Fatalf("expected ErrInvalidData, got %v", err)
		}
	})

	t.Run("duplicate id", func(t *testing.T) {
		dup := StaticSource{{ID: "a"}, {ID: "a"}}
		if err := NewService(dup, "v1").Load(context.Background()); !errors.Is(err, ErrInvalidData) {
			t.Fatalf("expected ErrInvalidData, got %v", err)
		}
	})

	t.Run("never loaded", func(t *testing.T) {
		if err := NewService(StaticSource{}, "v1").Ready(); !errors.Is(err, ErrNotLoaded) {
			t.Fatalf("expected ErrNotLoaded, got %v", err)
		}
	})
}

func TestFailedReloadKeepsSnapshot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`[{"id":"c1","step_type":"cleanser","price_band":"$"}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	svc := NewService(&FileSource{Path: path}, "v1")
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	loadedAt := svc.LoadedAt()

	if err := os.WriteFile(path, []byte(`[{"id":`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := svc.Load(context.Background()); !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected ErrInvalidData on reload, got %v", err)
	}

	if svc.Ready() != nil {
		t.Fatal("service must stay ready with the previous snapshot")
	}
	if _, ok := svc.ByID("c1"); !ok || svc.Size() != 1 {
		t.Fatal("previous snapshot must remain queryable")
	}
	if !svc.LoadedAt().Equal(loadedAt) {
		t.Fatal("failed reload must not change loaded_at")
	}
}

func TestSnapshotIsStableAcrossReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	svc := NewService(&FileSource{Path: path}, "v1")
	if _, err := svc.Snapshot(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded before load, got %v", err)
	}

	write(`[{"id":"a1","step_type":"cleanser","price_band":"$"}]`)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	held, err := svc.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	write(`[{"id":"b1","step_type":"cleanser","price_band":"$"},{"id":"b2","step_type":"serum","price_band":"$$"}]`)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := held.ByStepType(common.StepCleanser); !equalIDs(got, "a1") {
		t.Fatalf("held snapshot changed after reload: %v", ids(got))
	}
	if _, ok := held.ByID("b2"); ok {
		t.Fatal("held snapshot must not see products from the reload")
	}
	if got := svc.Candidates(common.StepCleanser, nil); !equalIDs(got, "b1") {
		t.Fatalf("service must serve the new snapshot, got %v", ids(got))
	}
	if held.Version() != "v1" || held.LoadedAt().After(svc.LoadedAt()) {
		t.Fatalf("unexpected snapshot metadata: %s %v", held.Version(), held.LoadedAt())
	}

	var empty *Snapshot
	if len(empty.Products()) != 0 || empty.Candidates(common.StepCleanser, nil) != nil {
		t.Fatal("nil snapshot must behave as an empty catalog")
	}
}

func TestHTTPSource(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/catalog.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"c1","step_type":"cleanser","price_band":"$"}]`))
		case "/broken.json":
			_, _ = w.Write([]byte(`<html>`))
		case "/down.json":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	source := NewSource(srv.URL+"/catalog.json", 0)
	if _, ok := source.(*HTTPSource); !ok {
		t.Fatalf("expected HTTPSource for URL, got %T", source)
	}
	products, err := source.Load(context.Background())
	if err != nil || len(products) != 1 {
		t.Fatalf("unexpected result: %v %v", products, err)
	}

	cases := map[string]error{
		"/missing.json": ErrNotFound,
		"/broken.json":  ErrInvalidData,
		"/down.json":    ErrInvalidData,
	}
	for path, want := range cases {
		if _, err := NewHTTPSource(srv.URL+path, 0).Load(context.Background()); !errors.Is(err, want) {
			t.Fatalf("%s: expected %v, got %v", path, want, err)
		}
	}
}

func TestQueries(t *testing.T) {
	t.Parallel()
	svc := loadedService(t)

	if p, ok := svc.ByID("s1"); !ok || p.Name != "Niacinamide 5%" {
		t.Fatalf("ByID: %+v %v", p, ok)
	}
	if _, ok := svc.ByID("zzz"); ok {
		t.Fatal("expected unknown id to miss")
	}
	if got := svc.ByStepType(common.StepCleanser); !equalIDs(got, "c1", "c2", "c3") {
		t.Fatalf("ByStepType must keep catalog order, got %v", ids(got))
	}
	if got := svc.Candidates(common.StepCleanser, []common.Flag{common.FlagEssentialOilFree}); !equalIDs(got, "c2") {
		t.Fatalf("Candidates: %v", ids(got))
	}
	if got := svc.Products(); len(got) != 4 {
		t.Fatalf("Products: %v", ids(got))
	}
}

func TestFiltered(t *testing.T) {
	t.Parallel()
	svc := loadedService(t)

	cases := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"no criteria", FilterOptions{}, []string{"c1", "c2", "c3", "s1"}},
		{"step type", FilterOptions{StepType: common.StepSerum}, []string{"s1"}},
		{"budget", FilterOptions{StepType: common.StepCleanser, BudgetTier: common.BudgetValue}, []string{"c1", "c3"}},
		{"flags", FilterOptions{RequiredFlags: []common.Flag{common.FlagFragranceFree, common.FlagEssentialOilFree}}, []string{"c2"}},
		{"search by ingredient", FilterOptions{SearchText: "salicylic"}, []string{"c3"}},
		{"search by brand case-insensitive", FilterOptions{SearchText: "BALANCE"}, []string{"s1"}},
		// 搜尋字串存在時忽略其他條件
		{"search short-circuits other criteria", FilterOptions{
			StepType:   common.StepSerum,
			BudgetTier: common.BudgetPremium,
			SearchText: "cleanser",
		}, []string{"c1", "c2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.Filtered(tc.opts); !equalIDs(got, tc.want...) {
				t.Fatalf("expected %v, got %v", tc.want, ids(got))
			}
		})
	}
}

func TestAlternatives(t *testing.T) {
	t.Parallel()
	svc := loadedService(t)

	t.Run("budget match outranks flag count", func(t *testing.T) {
		// c2 多一個標籤但超出預算，c3 符合預算
		prefs := common.Preferences{
			BudgetTier: common.BudgetValue,
			Safety:     common.SafetyToggles{FragranceFree: true},
		}
		if got := svc.Alternatives("c1", prefs); !equalIDs(got, "c3", "c2") {
			t.Fatalf("expected [c3 c2], got %v", ids(got))
		}
	})

	t.Run("ordering follows budget tier", func(t *testing.T) {
		// c2 為 $$$，c3 為 $
		prefs := common.Preferences{BudgetTier: common.BudgetPremium}
		if got := svc.Alternatives("c1", prefs); !equalIDs(got, "c2", "c3") {
			t.Fatalf("expected [c2 c3], got %v", ids(got))
		}
		prefs.BudgetTier = common.BudgetBalanced
		if got := svc.Alternatives("c1", prefs); !equalIDs(got, "c3", "c2") {
			t.Fatalf("expected [c3 c2], got %v", ids(got))
		}
	})

	t.Run("ties keep catalog order", func(t *testing.T) {
		// 兩者都不符合預算，標籤數也相同
		if got := svc.Alternatives("c1", common.Preferences{}); !equalIDs(got, "c2", "c3") {
			t.Fatalf("expected [c2 c3], got %v", ids(got))
		}
	})

	t.Run("required flags filter alternatives", func(t *testing.T) {
		prefs := common.Preferences{
			BudgetTier: common.BudgetValue,
			Safety:     common.SafetyToggles{EssentialOilFree: true},
		}
		if got := svc.Alternatives("c1", prefs); !equalIDs(got, "c2") {
			t.Fatalf("expected [c2], got %v", ids(got))
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		if got := svc.Alternatives("nope", common.Preferences{}); len(got) != 0 {
			t.Fatalf("expected none, got %v", ids(got))
		}
	})
}

func TestRetailLinks(t *testing.T) {
	t.Parallel()
	svc := loadedService(t)

	links := svc.RetailLinks("c2", []string{"Sephora", "Corner Shop", "Amazon"})
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(links))
	}
	if links[0].Retailer != "Sephora" || links[0].URL != "https://sephora.com/product/c2" {
		t.Fatalf("unexpected first link: %+v", links[0])
	}
	if links[1].URL != "https://example.com/product/c2" {
		t.Fatalf("unknown retailer should use default base, got %s", links[1].URL)
	}
	if links[2].PriceRange != "60-120" || links[2].Currency != "USD" {
		t.Fatalf("unexpected price info: %+v", links[2])
	}

	if got := svc.RetailLinks("nope", common.DefaultRetailerOrder); len(got) != 0 {
		t.Fatalf("expected no links for unknown product, got %v", got)
	}
}
