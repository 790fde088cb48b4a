package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/billing/internal/models"
)

// Totals is the outcome of a price computation. RemainingAmount is nil unless a paid amount was
// supplied.
type Totals struct {
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	TotalPrice      decimal.Decimal
	RemainingAmount *decimal.Decimal
}

const centPlaces = 2

// Compute sums every item group, rounds the flat discount to cents, clamps it into [0, subtotal] and derives the
// total and, when paid is non-nil, the remaining amount. Amounts are rounded to cents.
func Compute(groups [][]models.LineItem, discount decimal.Decimal, paid *decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, group := range groups {
		for _, item := range group {
			subtotal = subtotal.Add(item.Amount())
		}
	}
	subtotal = subtotal.Round(centPlaces)

	// Both operands are whole cents, so total is exactly subtotal minus the stored discount.
	clamped := decimal.Max(decimal.Zero, decimal.Min(discount.Round(centPlaces), subtotal))
	total := subtotal.Sub(clamped)

	totals := Totals{
		Subtotal:   subtotal,
		Discount:   clamped,
		TotalPrice: total,
	}

	if paid != nil {
		remaining := Remaining(total, *paid)
		totals.RemainingAmount = &remaining
	}

	return totals
}

// Remaining is max(0, total - paid), rounded to cents.
func Remaining(total, paid decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, total.Sub(paid)).Round(centPlaces)
}
