package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/billing/internal/errs"
	"github.com/jesses-code-adventures/billing/internal/models"
)

// DefaultQuantity applies when an item arrives without a quantity, on every create and edit path.
var DefaultQuantity = decimal.NewFromInt(1)

// RawItem is a line item as supplied by a caller. Price and Quantity may hold a number, a numeric
// string, a json.Number or nothing at all.
type RawItem struct {
	Name     string `json:"name"`
	Price    any    `json:"price"`
	Quantity any    `json:"quantity"`
}

// NormalizeItems converts caller input into line items. It never fails: names are trimmed (an
// empty name is kept), unusable prices become 0, unusable quantities become 0 and missing
// quantities become DefaultQuantity.
func NormalizeItems(raw []RawItem) []models.LineItem {
	items := make([]models.LineItem, 0, len(raw))
	for _, r := range raw {
		quantity := DefaultQuantity
		if !IsMissing(r.Quantity) {
			quantity = ToAmount(r.Quantity)
		}
		items = append(items, models.LineItem{
			Name:      strings.TrimSpace(r.Name),
			UnitPrice: ToAmount(r.Price),
			Quantity:  quantity,
		})
	}
	return items
}

// RequireItems normalizes items for a role that needs at least one entry.
func RequireItems(op, role string, raw []RawItem) ([]models.LineItem, error) {
	if len(raw) == 0 {
		return nil, errs.NewValidation(op, role, fmt.Sprintf("at least one %s is required", strings.TrimSuffix(role, "s")))
	}
	return NormalizeItems(raw), nil
}

// ToAmount coerces v into a finite, non-negative decimal, or zero.
func ToAmount(v any) decimal.Decimal {
	d, ok := parseDecimal(v)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ParseAmount is the strict form of ToAmount: ok is false when v is missing, unparseable or
// non-finite. Negative values are returned as is.
func ParseAmount(v any) (d decimal.Decimal, ok bool) {
	if IsMissing(v) {
		return decimal.Zero, false
	}
	return parseDecimal(v)
}

// IsMissing reports whether v carries no value at all, as opposed to an invalid one.
func IsMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case *string:
		return t == nil || strings.TrimSpace(*t) == ""
	}
	return false
}

func parseDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero, false
		}
		return *t, true
	case float64:
		return fromFloat(t)
	case float32:
		return fromFloat(float64(t))
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case json.Number:
		return fromString(t.String())
	case string:
		return fromString(t)
	case *string:
		if t == nil {
			return decimal.Zero, false
		}
		return fromString(*t)
	}
	return decimal.Zero, false
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// fromString goes through strconv first so "Infinity", "NaN" and hex floats are rejected the
// same way a float input would be.
func fromString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
