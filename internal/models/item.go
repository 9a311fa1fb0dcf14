package models

import "time"

// OrderItem is one line item within an order.
type OrderItem struct {
	ID int64

	// Quantity is the raw stored quantity. When the order was paid as one
	// of several splits, EffectiveQuantity divides it by SplitDivisor.
	Quantity float64

	// OpenPrice, when set, is a manually entered amount that overrides the
	// menu item's configured price for this line.
	OpenPrice *float64

	Course     int64
	WasSent    bool
	SentAt     *time.Time
	CreatedAt  *time.Time
	WaiterName *string

	// SplitDivisor is the split factor relevant to how this item entered
	// the paid split: the split's own count, or the linked table order's
	// split-by value. Zero and one both mean no division.
	SplitDivisor int64

	MenuItem  *MenuItem
	Modifiers []*Modifier
	Discounts []*Discount
}

// EffectiveQuantity returns the quantity adjusted for table splits. A zero
// split divisor is treated as no split, never as an error.
func (it *OrderItem) EffectiveQuantity() float64 {
	if it.SplitDivisor <= 1 {
		return it.Quantity
	}
	return it.Quantity / float64(it.SplitDivisor)
}

// Name returns the menu item name for the line.
func (it *OrderItem) Name() string {
	if it.MenuItem == nil {
		return ""
	}
	return it.MenuItem.Name
}

// SalesCategory returns the sales category of the line's menu item, or nil
// if it has none.
func (it *OrderItem) SalesCategory() *SalesCategory {
	if it.MenuItem == nil {
		return nil
	}
	return it.MenuItem.SalesCategory
}

// WasVoided reports whether any discount on the item is a void. Voided
// items contribute nothing to sales totals, tax or category breakdowns.
func (it *OrderItem) WasVoided() bool {
	for _, d := range it.Discounts {
		if d.Type == DiscountVoid {
			return true
		}
	}
	return false
}

// Summary returns the allow-listed serializable view of the item, with
// nested menu item, modifier and discount summaries.
func (it *OrderItem) Summary() map[string]any {
	meta := map[string]any{
		"order_item_id": it.ID,
		"quantity":      it.EffectiveQuantity(),
		"open_price":    it.OpenPrice,
		"course":        it.Course,
		"was_sent":      it.WasSent,
		"sent_time":     it.SentAt,
		"waiter_name":   it.WaiterName,
	}
	out := map[string]any{"meta": meta}
	if it.MenuItem != nil {
		out["menu_item"] = it.MenuItem.Summary()
	}
	mods := make([]map[string]any, 0, len(it.Modifiers))
	for _, m := range it.Modifiers {
		mods = append(mods, m.Summary())
	}
	discounts := make([]map[string]any, 0, len(it.Discounts))
	for _, d := range it.Discounts {
		discounts = append(discounts, d.Summary())
	}
	out["modifiers"] = mods
	out["discounts"] = discounts
	return out
}
