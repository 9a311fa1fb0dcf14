// Package calculator computes derived financial figures for orders: item
// and order pricing, taxes, and per-sales-category attribution.
//
// All functions are pure computations over already-loaded entities; they
// perform no I/O. Malformed rows are rejected at load time by the storage
// layer, so nothing here returns an error.
package calculator

import "github.com/tillview/tillview/internal/models"

// ItemPrice returns the line's base price: effective quantity times the
// effective unit price. An open price, when present, overrides the menu
// item's configured price entirely.
func ItemPrice(it *models.OrderItem) float64 {
	price := 0.0
	if it.MenuItem != nil {
		price = it.MenuItem.Price
	}
	if it.OpenPrice != nil {
		price = *it.OpenPrice
	}
	return it.EffectiveQuantity() * price
}

// ModifierTreeTotal sums modifier prices across the whole nested tree.
func ModifierTreeTotal(mods []*models.Modifier) float64 {
	total := 0.0
	for _, m := range mods {
		total += m.Price()
		total += ModifierTreeTotal(m.Nested)
	}
	return total
}

// ItemGross returns the line's value including modifiers, before discounts.
func ItemGross(it *models.OrderItem) float64 {
	return ItemPrice(it) + ModifierTreeTotal(it.Modifiers)
}

// DiscountPrice returns the discount's effect on the item subtotal, always
// negative for value-reducing discounts. For voids the stored amount is
// unreliable, so the price is forced to the negative of the item's gross,
// zeroing the item's subtotal regardless of what was stored.
func DiscountPrice(d *models.Discount) float64 {
	if d.Type == models.DiscountVoid && d.Item != nil {
		return -ItemGross(d.Item)
	}
	return -d.Amount
}

// DiscountAmount returns the receipt-facing magnitude of the discount: the
// corrected void amount for voids, the stored amount otherwise.
func DiscountAmount(d *models.Discount) float64 {
	return -DiscountPrice(d)
}

// ItemDiscountTotal sums the discount prices on the item (negative or zero).
func ItemDiscountTotal(it *models.OrderItem) float64 {
	total := 0.0
	for _, d := range it.Discounts {
		total += DiscountPrice(d)
	}
	return total
}

// ItemSubtotal returns gross plus the (negative) discount total. A voided
// item always subtotals to zero.
func ItemSubtotal(it *models.OrderItem) float64 {
	return ItemGross(it) + ItemDiscountTotal(it)
}

// DiscountRate returns the fraction of the item's gross removed by
// discounts, used to scale the item's tax contribution. Zero when there are
// no discounts or the gross is zero.
func DiscountRate(it *models.OrderItem) float64 {
	if len(it.Discounts) == 0 {
		return 0
	}
	gross := ItemGross(it)
	if gross == 0 {
		return 0
	}
	return -ItemDiscountTotal(it) / gross
}

// TaxEligibleSubtotal returns the undiscounted portion of the item's value
// subject to the given tax number (1-3): the base price unless the menu
// item excludes that tax, plus each modifier's price unless the modifier's
// own menu item excludes it, recursively through nested modifiers.
func TaxEligibleSubtotal(it *models.OrderItem, tax int) float64 {
	eligible := 0.0
	if it.MenuItem == nil || !it.MenuItem.ExcludesTax(tax) {
		eligible = ItemPrice(it)
	}
	return eligible + modifierTaxEligible(it.Modifiers, tax)
}

func modifierTaxEligible(mods []*models.Modifier, tax int) float64 {
	total := 0.0
	for _, m := range mods {
		if !m.ExcludesTax(tax) {
			total += m.Price()
		}
		total += modifierTaxEligible(m.Nested, tax)
	}
	return total
}
