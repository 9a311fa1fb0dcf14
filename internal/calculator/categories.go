package calculator

import "github.com/tillview/tillview/internal/models"

// Breakdown maps sales category names to currency amounts. Contributions
// with no resolvable category are keyed under the empty string. Entries
// that are exactly zero are scrubbed before a breakdown is returned.
type Breakdown map[string]float64

func categoryName(c *models.SalesCategory) string {
	if c == nil {
		return ""
	}
	return c.Name
}

// itemGrossByCategory attributes one item's gross across categories: the
// base price to the item's own category, each modifier's price to the
// modifier's resolved category, recursively.
func itemGrossByCategory(it *models.OrderItem) Breakdown {
	out := Breakdown{}
	out[categoryName(it.SalesCategory())] += ItemPrice(it)
	addModifierGross(out, it.Modifiers)
	return out
}

func addModifierGross(out Breakdown, mods []*models.Modifier) {
	for _, m := range mods {
		out[categoryName(m.SalesCategory())] += m.Price()
		addModifierGross(out, m.Nested)
	}
}

// GrossSalesByCategory returns the order's gross sales split by category.
// Voided items contribute nothing.
func GrossSalesByCategory(o *models.Order) Breakdown {
	out := Breakdown{}
	for _, it := range o.Items {
		if it.WasVoided() {
			continue
		}
		for cat, amount := range itemGrossByCategory(it) {
			out[cat] += amount
		}
	}
	return scrubZeroes(out)
}

// DiscountsByCategory pro-rates each item's discount total across the
// item's gross-by-category split, proportionally to each category's share
// of the item's gross. Amounts are negative. An item with zero gross gets
// zero share everywhere rather than dividing by zero.
func DiscountsByCategory(o *models.Order) Breakdown {
	out := Breakdown{}
	for _, it := range o.Items {
		if it.WasVoided() {
			continue
		}
		total := ItemDiscountTotal(it)
		if total == 0 {
			continue
		}
		gross := ItemGross(it)
		for cat, amount := range itemGrossByCategory(it) {
			if gross == 0 {
				continue
			}
			out[cat] += total * (amount / gross)
		}
	}
	return scrubZeroes(out)
}

// NetSalesByCategory returns gross plus discounts per category. Categories
// present in gross but absent from discounts default to zero discount.
func NetSalesByCategory(o *models.Order) Breakdown {
	out := Breakdown{}
	discounts := DiscountsByCategory(o)
	for cat, amount := range GrossSalesByCategory(o) {
		out[cat] = amount + discounts[cat]
	}
	return scrubZeroes(out)
}

// ItemDiscountByCategory exposes the pro-rated split of a single item's
// discount total, used by the report exploder to emit one record per
// affected category.
func ItemDiscountByCategory(it *models.OrderItem) Breakdown {
	out := Breakdown{}
	total := ItemDiscountTotal(it)
	if total == 0 {
		return out
	}
	gross := ItemGross(it)
	if gross == 0 {
		return out
	}
	for cat, amount := range itemGrossByCategory(it) {
		out[cat] += total * (amount / gross)
	}
	return scrubZeroes(out)
}

// DiscountByCategory splits one discount's signed price across the
// containing item's gross-by-category shares. A zero-gross item keeps the
// whole discount under the item's own category.
func DiscountByCategory(d *models.Discount) Breakdown {
	out := Breakdown{}
	if d.Item == nil {
		return out
	}
	price := DiscountPrice(d)
	if price == 0 {
		return out
	}
	gross := ItemGross(d.Item)
	if gross == 0 {
		out[categoryName(d.Item.SalesCategory())] = price
		return out
	}
	for cat, amount := range itemGrossByCategory(d.Item) {
		out[cat] += price * (amount / gross)
	}
	return scrubZeroes(out)
}

func scrubZeroes(b Breakdown) Breakdown {
	for cat, amount := range b {
		if amount == 0 {
			delete(b, cat)
		}
	}
	return b
}
