package common

import (
	"strings"
	"testing"
)

func TestParseJSONBytes(t *testing.T) {
	t.Parallel()

	var p Product
	if err := ParseJSONBytes([]byte(`{"id":"c1","step_type":"cleanser","flags":["fragrance_free"],"price_band":"$"}`), &p); err != nil {
		t.Fatalf("ParseJSONBytes: %v", err)
	}
	if p.ID != "c1" || p.StepType != StepCleanser || !p.IsFragranceFree() {
		t.Fatalf("unexpected product: %+v", p)
	}

	if err := ParseJSONBytes([]byte(`{"id":"a"} {"id":"b"}`), &p); err == nil {
		t.Fatal("expected trailing data to be rejected")
	}
	if err := DecodeJSON(strings.NewReader(`[`), &[]Product{}); err == nil {
		t.Fatal("expected truncated input to fail")
	}
}
