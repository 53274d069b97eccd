package tools

import (
	"encoding/json"
	"testing"

	"github.com/tidwall/gjson"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"search result", `{"products":[{"id":"p1","name":"Lamp","price":10}],"info":{"originalQuery":"lamp"}}`, "search"},
		{"search result with loose types", `{"products":[{"id":42,"name":"ThinkPad","price":"350.00","stock":"3"}],"info":{"originalQuery":"laptop"}}`, "search"},
		{"empty search result", `{"products":[],"info":{"originalQuery":"xyz123"}}`, "search"},
		{"product array", `[{"id":"p1","name":"Lamp","price":10}]`, "list"},
		{"product array with numeric ids", `[{"id":7,"name":"Mug","price":"4.5"}]`, "list"},
		{"string", `"Your order has shipped"`, "text"},
		{"empty array", `[]`, "opaque"},
		{"array of numbers", `[1,2,3]`, "opaque"},
		{"object without info", `{"products":[]}`, "opaque"},
		{"number", `42`, "opaque"},
		{"invalid", `{nope`, "opaque"},
		{"empty", ``, "opaque"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			switch Decode(json.RawMessage(tt.raw)).(type) {
			case SearchResult:
				got = "search"
			case ProductList:
				got = "list"
			case TextResult:
				got = "text"
			case OpaqueResult:
				got = "opaque"
			}
			if got != tt.want {
				t.Errorf("Decode(%s) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDecodeLooseProductFields(t *testing.T) {
	raw := `{"products":[{"id":42,"name":"ThinkPad","price":"350.00","stock":"3","vendor_name":"Ana"},{"id":"p2","name":"Desk","price":40,"stock":null}],"info":{"originalQuery":"laptop","correctedQuery":"laptops"}}`

	sr, ok := Decode(json.RawMessage(raw)).(SearchResult)
	if !ok {
		t.Fatalf("expected SearchResult, got %T", Decode(json.RawMessage(raw)))
	}
	if len(sr.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(sr.Products))
	}

	first := sr.Products[0]
	if first.ID != "42" {
		t.Errorf("ID = %q, want %q", first.ID, "42")
	}
	if first.Price != 350 {
		t.Errorf("Price = %v, want 350", first.Price)
	}
	if first.Stock == nil || *first.Stock != 3 {
		t.Errorf("Stock = %v, want 3", first.Stock)
	}
	if first.VendorName != "Ana" {
		t.Errorf("VendorName = %q", first.VendorName)
	}
	if sr.Products[1].Stock != nil {
		t.Errorf("null stock should stay nil, got %d", *sr.Products[1].Stock)
	}
	if sr.Info.CorrectedQuery != "laptops" {
		t.Errorf("CorrectedQuery = %q", sr.Info.CorrectedQuery)
	}
}

func TestDecodeStock(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		none bool
	}{
		{`{"stock":5}`, 5, false},
		{`{"stock":" 12 "}`, 12, false},
		{`{"stock":"plenty"}`, 0, true},
		{`{"stock":null}`, 0, true},
		{`{}`, 0, true},
	}

	for _, tt := range tests {
		got := decodeStock(gjson.Get(tt.raw, "stock"))
		if tt.none {
			if got != nil {
				t.Errorf("decodeStock(%s) = %d, want nil", tt.raw, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("decodeStock(%s) = %v, want %d", tt.raw, got, tt.want)
		}
	}
}
