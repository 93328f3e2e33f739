// Package calc computes quote line item and aggregate totals.
//
// All arithmetic is decimal fixed-point. Each derived component is rounded to
// two places at the item boundary, which keeps the aggregate identity
// total = subtotal - discount + tax exact for any input set.
package calc

import "github.com/shopspring/decimal"

const Places = 2

var hundred = decimal.NewFromInt(100)

// Item is a single quote line as entered.
type Item struct {
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	TaxRatePct  decimal.Decimal
}

// ItemTotals are the derived amounts for a single line.
type ItemTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Taxable  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// QuoteTotals are the quote level aggregates.
type QuoteTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeItem derives the amounts for one line.
func ComputeItem(item Item) ItemTotals {
	subtotal := item.Quantity.Mul(item.UnitPrice).Round(Places)
	discount := subtotal.Mul(item.DiscountPct).Div(hundred).Round(Places)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(item.TaxRatePct).Div(hundred).Round(Places)

	return ItemTotals{
		Subtotal: subtotal,
		Discount: discount,
		Taxable:  taxable,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}
}

// Compute derives per-item totals and the quote aggregates in one pass.
func Compute(items []Item) ([]ItemTotals, QuoteTotals) {
	perItem := make([]ItemTotals, 0, len(items))
	totals := QuoteTotals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}

	for _, item := range items {
		derived := ComputeItem(item)
		perItem = append(perItem, derived)
		totals.Subtotal = totals.Subtotal.Add(derived.Subtotal)
		totals.Discount = totals.Discount.Add(derived.Discount)
		totals.Tax = totals.Tax.Add(derived.Tax)
	}

	totals.Total = totals.Subtotal.Sub(totals.Discount).Add(totals.Tax)
	return perItem, totals
}
