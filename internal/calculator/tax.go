package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/tillview/tillview/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// OrderSubtotal sums the subtotals of all non-voided items on the order.
// Taxes are not included.
func OrderSubtotal(o *models.Order) float64 {
	total := 0.0
	for _, it := range o.Items {
		if it.WasVoided() {
			continue
		}
		total += ItemSubtotal(it)
	}
	return total
}

// OrderTaxes computes the order's total tax. Per item, each tax is applied
// to the undiscounted tax-eligible amount (tax 2 stacking on the
// tax-1-inclusive amount when configured), and the item's combined tax is
// scaled by (1 - discount rate). All intermediate arithmetic runs in
// fixed-point cents; the sum across items is rounded half-up to whole cents
// once, then converted back to dollars. Floating-point summation here
// drifts by a penny against the POS system's own printed totals.
func OrderTaxes(o *models.Order) float64 {
	cents := decimal.Zero
	for _, it := range o.Items {
		if it.WasVoided() {
			continue
		}
		cents = cents.Add(itemTaxCents(o, it))
	}
	return cents.Round(0).Div(oneHundred).InexactFloat64()
}

// OrderTotal returns subtotal plus taxes.
func OrderTotal(o *models.Order) float64 {
	return OrderSubtotal(o) + OrderTaxes(o)
}

// itemTaxCents returns the item's tax contribution in (fractional) cents.
func itemTaxCents(o *models.Order, it *models.OrderItem) decimal.Decimal {
	tax1 := eligibleCents(it, 1).Mul(decimal.NewFromFloat(o.TaxRate1))

	taxable2 := eligibleCents(it, 2)
	if o.StackTax2OnTax1 {
		taxable2 = taxable2.Add(tax1)
	}
	tax2 := taxable2.Mul(decimal.NewFromFloat(o.TaxRate2))

	tax3 := eligibleCents(it, 3).Mul(decimal.NewFromFloat(o.TaxRate3))

	total := tax1.Add(tax2).Add(tax3)
	if rate := DiscountRate(it); rate != 0 {
		total = total.Mul(decimal.NewFromFloat(1 - rate))
	}
	return total
}

func eligibleCents(it *models.OrderItem, tax int) decimal.Decimal {
	return decimal.NewFromFloat(TaxEligibleSubtotal(it, tax)).Mul(oneHundred)
}
