package models

import (
	"fmt"
	"time"
)

// DiscountType distinguishes ordinary discounts from voids. Both are stored
// in the same table, discriminated by a type code.
type DiscountType int

const (
	// DiscountVoid cancels the line item's value entirely.
	DiscountVoid DiscountType = 0
	// DiscountRegular reduces the line item's price by a stored amount.
	DiscountRegular DiscountType = 1
)

// String returns the reporting label for the discount type.
func (t DiscountType) String() string {
	if t == DiscountVoid {
		return "Void"
	}
	return "Discount"
}

// DiscountTypeFromCode maps the raw type column to a DiscountType. An
// unrecognized code is a data-integrity failure, not something to coerce.
func DiscountTypeFromCode(code int64) (DiscountType, error) {
	switch code {
	case 0:
		return DiscountVoid, nil
	case 1:
		return DiscountRegular, nil
	default:
		return 0, &IntegrityError{
			Entity: "discount",
			Field:  "type",
			Reason: fmt.Sprintf("unexpected discount type code %d", code),
		}
	}
}

// Discount is a price reduction or void applied to a line item.
type Discount struct {
	ID   int64
	UUID string

	Type DiscountType

	// Amount is the raw stored discount amount. For voids the stored value
	// is unreliable; use the calculator's DiscountPrice, which corrects a
	// void to the negative of the item's gross.
	Amount float64

	Description      string
	Taxable          bool
	ReturnsInventory bool
	AppliedAt        *time.Time

	WaiterUUID     *string
	WaiterName     *string
	AuthorizerUUID *string
	AuthorizerName *string

	// Item is the non-owning back-reference to the discounted line item,
	// set at load time. Needed to correct void amounts.
	Item *OrderItem
}

// Summary returns the allow-listed serializable view of the discount.
func (d *Discount) Summary() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"discount_uuid":     d.UUID,
			"discount_id":       d.ID,
			"discount_type":     d.Type.String(),
			"amount":            d.Amount,
			"description":       d.Description,
			"taxable":           d.Taxable,
			"returns_inventory": d.ReturnsInventory,
			"datetime":          d.AppliedAt,
			"waiter_name":       d.WaiterName,
			"authorizer_name":   d.AuthorizerName,
		},
	}
}
