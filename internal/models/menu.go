package models

// MenuItem is the configured menu entry referenced by line items and
// menu-based modifiers.
type MenuItem struct {
	UUID  string
	Name  string
	Price float64

	// Per-tax exclusion flags. Each of the three tax rates may be excluded
	// independently for a menu item.
	ExcludeTax1 bool
	ExcludeTax2 bool
	ExcludeTax3 bool

	SalesCategory *SalesCategory
}

// ExcludesTax reports whether the menu item is excluded from the given tax
// number (1-3). Unknown tax numbers are never excluded.
func (mi *MenuItem) ExcludesTax(tax int) bool {
	switch tax {
	case 1:
		return mi.ExcludeTax1
	case 2:
		return mi.ExcludeTax2
	case 3:
		return mi.ExcludeTax3
	}
	return false
}

// Summary returns the allow-listed serializable view of the menu item.
func (mi *MenuItem) Summary() map[string]any {
	meta := map[string]any{
		"uuid":         mi.UUID,
		"name":         mi.Name,
		"price":        mi.Price,
		"exclude_tax1": mi.ExcludeTax1,
		"exclude_tax2": mi.ExcludeTax2,
		"exclude_tax3": mi.ExcludeTax3,
	}
	out := map[string]any{"meta": meta}
	if mi.SalesCategory != nil {
		out["sales_category"] = mi.SalesCategory.Summary()
	}
	return out
}

// SalesCategory is a reporting label ("Food", "Liquor") used as a grouping
// key in financial breakdowns. Categories are compared by Name: breakdown
// maps key on the name, consistently everywhere.
type SalesCategory struct {
	UUID   string
	TypeID int64
	Name   string
}

// Summary returns the allow-listed serializable view of the category.
func (c *SalesCategory) Summary() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"category_uuid":    c.UUID,
			"category_type_id": c.TypeID,
			"name":             c.Name,
		},
	}
}
