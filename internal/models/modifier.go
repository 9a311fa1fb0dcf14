package models

// Modifier is an addition or customization on a line item. A modifier is
// either menu-based (a chosen menu item, with name and price resolved from
// that item) or free-text (name and price stored on the modifier row).
// Menu-based modifiers may carry their own nested modifier trees.
type Modifier struct {
	ID   int64
	UUID string

	Required bool

	// Text and UnitPrice are the free-text fields on the modifier row,
	// used when the modifier has no menu item linkage.
	Text      string
	UnitPrice float64

	// MenuItem is set for menu-based modifiers and nil for free-text ones.
	MenuItem *MenuItem

	Nested []*Modifier

	// Back-references to the container, set at load time. Exactly one is
	// non-nil: ContainerItem for top-level modifiers, ParentModifier for
	// nested ones. Not owned; never serialized.
	ContainerItem  *OrderItem
	ParentModifier *Modifier
}

// Name returns the modifier's display name: the menu item name when the
// modifier is menu-based, otherwise the free text on the row.
func (m *Modifier) Name() string {
	if m.MenuItem != nil {
		return m.MenuItem.Name
	}
	return m.Text
}

// Price returns the modifier's own price, excluding nested modifiers.
func (m *Modifier) Price() float64 {
	return m.UnitPrice
}

// SalesCategory resolves the category this modifier's value is attributed
// to. Menu-based modifiers use their own menu item's category; free-text
// modifiers inherit from their container chain, walking parent modifiers
// up to the order item. Returns nil when no ancestor has a category.
func (m *Modifier) SalesCategory() *SalesCategory {
	if m.MenuItem != nil && m.MenuItem.SalesCategory != nil {
		return m.MenuItem.SalesCategory
	}
	if m.ParentModifier != nil {
		return m.ParentModifier.SalesCategory()
	}
	if m.ContainerItem != nil {
		return m.ContainerItem.SalesCategory()
	}
	return nil
}

// ExcludesTax reports whether this modifier's value is excluded from the
// given tax number (1-3). Free-text modifiers are never excluded.
func (m *Modifier) ExcludesTax(tax int) bool {
	if m.MenuItem == nil {
		return false
	}
	return m.MenuItem.ExcludesTax(tax)
}

// Summary returns the allow-listed serializable view of the modifier and
// its nested modifiers.
func (m *Modifier) Summary() map[string]any {
	meta := map[string]any{
		"modifier_uuid": m.UUID,
		"modifier_id":   m.ID,
		"name":          m.Name(),
		"price":         m.Price(),
		"is_required":   m.Required,
	}
	if cat := m.SalesCategory(); cat != nil {
		meta["sales_category"] = cat.Name
	} else {
		meta["sales_category"] = nil
	}
	nested := make([]map[string]any, 0, len(m.Nested))
	for _, n := range m.Nested {
		nested = append(nested, n.Summary())
	}
	return map[string]any{
		"meta":      meta,
		"modifiers": nested,
	}
}
