package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(price, qty string) models.LineItem {
	return models.LineItem{Name: "item", UnitPrice: dec(price), Quantity: dec(qty)}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		groups       [][]models.LineItem
		discount     string
		wantSubtotal string
		wantDiscount string
		wantTotal    string
	}{
		{
			name:         "services with a flat discount",
			groups:       [][]models.LineItem{{item("10", "2"), item("5", "1")}},
			discount:     "5",
			wantSubtotal: "25",
			wantDiscount: "5",
			wantTotal:    "20",
		},
		{
			name:         "discount larger than subtotal is clamped",
			groups:       [][]models.LineItem{{item("10", "1")}},
			discount:     "50",
			wantSubtotal: "10",
			wantDiscount: "10",
			wantTotal:    "0",
		},
		{
			name:         "negative discount is treated as zero",
			groups:       [][]models.LineItem{{item("10", "1")}},
			discount:     "-3",
			wantSubtotal: "10",
			wantDiscount: "0",
			wantTotal:    "10",
		},
		{
			name:         "services and materials are summed together",
			groups:       [][]models.LineItem{{item("100", "1")}, {item("12.5", "4"), item("0.333", "3")}},
			discount:     "0",
			wantSubtotal: "151",
			wantDiscount: "0",
			wantTotal:    "151",
		},
		{
			name:         "sub-cent discount is rounded before it is applied",
			groups:       [][]models.LineItem{{item("10", "1")}},
			discount:     "0.005",
			wantSubtotal: "10",
			wantDiscount: "0.01",
			wantTotal:    "9.99",
		},
		{
			name:         "sub-cent discount rounds down",
			groups:       [][]models.LineItem{{item("19.99", "1")}},
			discount:     "2.004",
			wantSubtotal: "19.99",
			wantDiscount: "2",
			wantTotal:    "17.99",
		},
		{
			name:         "empty groups",
			groups:       [][]models.LineItem{{}, nil},
			discount:     "10",
			wantSubtotal: "0",
			wantDiscount: "0",
			wantTotal:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.groups, dec(tt.discount), nil)

			if !got.Subtotal.Equal(dec(tt.wantSubtotal)) {
				t.Errorf("subtotal = %s, want %s", got.Subtotal, tt.wantSubtotal)
			}
			if !got.Discount.Equal(dec(tt.wantDiscount)) {
				t.Errorf("discount = %s, want %s", got.Discount, tt.wantDiscount)
			}
			if !got.TotalPrice.Equal(dec(tt.wantTotal)) {
				t.Errorf("total = %s, want %s", got.TotalPrice, tt.wantTotal)
			}
			if !got.TotalPrice.Equal(got.Subtotal.Sub(got.Discount)) {
				t.Errorf("total %s != subtotal %s - discount %s", got.TotalPrice, got.Subtotal, got.Discount)
			}
			if got.RemainingAmount != nil {
				t.Errorf("remaining should be nil without a paid amount, got %s", got.RemainingAmount)
			}
		})
	}
}

func TestComputeRemaining(t *testing.T) {
	groups := [][]models.LineItem{{item("100", "1")}}

	paid := dec("40")
	got := Compute(groups, decimal.Zero, &paid)
	if got.RemainingAmount == nil || !got.RemainingAmount.Equal(dec("60")) {
		t.Fatalf("remaining = %v, want 60", got.RemainingAmount)
	}

	overpaid := dec("130")
	got = Compute(groups, decimal.Zero, &overpaid)
	if !got.RemainingAmount.IsZero() {
		t.Errorf("remaining = %s, want 0 when overpaid", got.RemainingAmount)
	}
}

func TestNormalizeItems(t *testing.T) {
	raw := []RawItem{
		{Name: "  Boiler service ", Price: 80.5, Quantity: 2.0},
		{Name: "Call out", Price: "45"},
		{Name: "", Price: json.Number("12.25"), Quantity: "3"},
		{Name: "Bad price", Price: "abc", Quantity: -4},
		{Name: "Infinite", Price: math.Inf(1), Quantity: math.NaN()},
		{Name: "Blank quantity", Price: 10, Quantity: "  "},
	}

	got := NormalizeItems(raw)
	if len(got) != len(raw) {
		t.Fatalf("expected %d items, got %d", len(raw), len(got))
	}

	want := []struct {
		name, price, qty string
	}{
		{"Boiler service", "80.5", "2"},
		{"Call out", "45", "1"},
		{"", "12.25", "3"},
		{"Bad price", "0", "0"},
		{"Infinite", "0", "0"},
		{"Blank quantity", "10", "1"},
	}

	for i, w := range want {
		if got[i].Name != w.name {
			t.Errorf("item %d name = %q, want %q", i, got[i].Name, w.name)
		}
		if !got[i].UnitPrice.Equal(dec(w.price)) {
			t.Errorf("item %d price = %s, want %s", i, got[i].UnitPrice, w.price)
		}
		if !got[i].Quantity.Equal(dec(w.qty)) {
			t.Errorf("item %d quantity = %s, want %s", i, got[i].Quantity, w.qty)
		}
	}
}

func TestRequireItems(t *testing.T) {
	_, err := RequireItems("CreateQuote", "services", nil)
	if !errors.Is(err, errs.Validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, msg := errs.Public(err); msg != "services: at least one service is required" {
		t.Errorf("unexpected message %q", msg)
	}

	items, err := RequireItems("CreateQuote", "services", []RawItem{{Name: "Survey", Price: "0"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
		ok    bool
	}{
		{"int", 40, "40", true},
		{"string", " 12.50 ", "12.5", true},
		{"json number", json.Number("3"), "3", true},
		{"negative kept", "-5", "-5", true},
		{"missing", nil, "0", false},
		{"blank", "  ", "0", false},
		{"garbage", "ten", "0", false},
		{"infinite", math.Inf(1), "0", false},
		{"nan string", "NaN", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.value)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("amount = %s, want %s", got, tt.want)
			}
		})
	}
}
