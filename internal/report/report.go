// Package report flattens order graphs into report records and renders
// orders as receipt text, CSV and JSON.
package report

import (
	"sort"

	"github.com/tillview/tillview/internal/calculator"
	"github.com/tillview/tillview/internal/models"
)

// Record is one flat report row. Only the keys relevant to the record's
// object type are set; Fields lists every column a writer should emit.
type Record map[string]any

// Object type labels carried in every record.
const (
	ObjectOrder    = "Order"
	ObjectItem     = "OrderItem"
	ObjectModifier = "ItemModifier"
	ObjectDiscount = "ItemDiscount"
	ObjectPayment  = "Payment"
	ObjectLoyalty  = "LoyaltyActivity"
)

// Fields returns the full ordered column set for exploded order records.
func Fields() []string {
	return []string{
		"bill_number", "order_number", "datetime", "order_type", "object_type",
		"custom_takeout_type", "discount_type",
		"waiter_name", "name", "sales_category", "quantity", "price",
		"subtotal", "taxes", "total", "tip", "amount", "change", "balance",
		"payment_type", "payment_number", "party_name",
		"customer_account_id",
		"was_sent", "authorizer_name", "card_type",
		"auth_number", "table_name",
		"customer_id", "account_number",
	}
}

// Explode flattens an order into records: the order itself, each non-voided
// item, each modifier in the item's tree, each discount split into one
// record per affected sales category, then each payment, with an extra
// record for loyalty-backed payments. Voided items and everything attached
// to them are dropped.
func Explode(o *models.Order) []Record {
	basics := Record{
		"bill_number":  o.BillNumber,
		"order_number": o.OrderNumber,
		"order_type":   o.Type.String(),
	}

	records := []Record{basics.merge(Record{
		"object_type":         ObjectOrder,
		"table_name":          o.TableName,
		"party_name":          o.PartyName,
		"custom_takeout_type": o.CustomTakeoutType,
		"waiter_name":         o.WaiterName,
		"datetime":            o.PaidAt,
		"subtotal":            calculator.OrderSubtotal(o),
		"taxes":               calculator.OrderTaxes(o),
		"total":               calculator.OrderTotal(o),
	})}

	for _, it := range o.Items {
		if it.WasVoided() {
			continue
		}
		records = append(records, basics.merge(Record{
			"object_type":    ObjectItem,
			"datetime":       it.CreatedAt,
			"quantity":       it.EffectiveQuantity(),
			"name":           it.Name(),
			"sales_category": categoryName(it.SalesCategory()),
			"price":          calculator.ItemPrice(it),
			"waiter_name":    it.WaiterName,
			"was_sent":       it.WasSent,
		}))
		records = appendModifiers(records, basics, it, it.Modifiers)
		for _, d := range it.Discounts {
			records = appendDiscount(records, basics, d)
		}
	}

	for _, p := range o.Payments {
		records = append(records, basics.merge(Record{
			"object_type":         ObjectPayment,
			"datetime":            p.PaidAt,
			"payment_number":      p.Number,
			"payment_type":        p.Type.String(),
			"tip":                 p.Tip,
			"amount":              p.Amount,
			"change":              p.Change,
			"balance":             p.Balance,
			"customer_account_id": p.CustomerAccountID,
			"customer_id":         p.CustomerID,
			"card_type":           p.CardType,
			"auth_number":         p.AuthNumber,
		}))
		if p.Loyalty != nil {
			records = append(records, basics.merge(loyaltyRecord(p.Loyalty)))
		}
	}
	return records
}

func appendModifiers(records []Record, basics Record, it *models.OrderItem, mods []*models.Modifier) []Record {
	for _, m := range mods {
		records = append(records, basics.merge(Record{
			"object_type":    ObjectModifier,
			"name":           m.Name(),
			"datetime":       it.CreatedAt,
			"price":          m.Price(),
			"sales_category": categoryName(m.SalesCategory()),
			"waiter_name":    it.WaiterName,
		}))
		records = appendModifiers(records, basics, it, m.Nested)
	}
	return records
}

func appendDiscount(records []Record, basics Record, d *models.Discount) []Record {
	shares := calculator.DiscountByCategory(d)
	cats := make([]string, 0, len(shares))
	for cat := range shares {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		records = append(records, basics.merge(Record{
			"object_type":     ObjectDiscount,
			"datetime":        d.AppliedAt,
			"waiter_name":     d.WaiterName,
			"name":            d.Description,
			"sales_category":  cat,
			"price":           shares[cat],
			"authorizer_name": d.AuthorizerName,
			"discount_type":   d.Type.String(),
		}))
	}
	return records
}

// ExplodeLoyalty flattens loyalty activity into records with the same
// column set as exploded orders.
func ExplodeLoyalty(activities []*models.LoyaltyActivity) []Record {
	records := make([]Record, 0, len(activities))
	for _, a := range activities {
		records = append(records, loyaltyRecord(a))
	}
	return records
}

func loyaltyRecord(a *models.LoyaltyActivity) Record {
	return Record{
		"object_type":    ObjectLoyalty,
		"datetime":       a.CreatedAt,
		"name":           a.ActivityTypeName(),
		"amount":         a.BalanceChange(),
		"auth_number":    a.TransactionID,
		"account_number": a.AccountNumber,
		"waiter_name":    a.WaiterName,
	}
}

func (r Record) merge(fields Record) Record {
	out := make(Record, len(r)+len(fields))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func categoryName(c *models.SalesCategory) string {
	if c == nil {
		return ""
	}
	return c.Name
}
