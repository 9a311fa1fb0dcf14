package models

import "time"

// OrderType classifies how an order was served.
type OrderType int

// Order types as stored in the takeout-type column. A NULL column means the
// order was dine-in.
const (
	OrderTakeout OrderType = iota
	OrderDelivery
	OrderBarTab
	OrderDineIn
)

// String returns the reporting label for the order type.
func (t OrderType) String() string {
	switch t {
	case OrderTakeout:
		return "takeout"
	case OrderDelivery:
		return "delivery"
	case OrderBarTab:
		return "bartab"
	default:
		return "dinein"
	}
}

// OrderTypeFromColumn maps the raw takeout-type column to an OrderType.
// The column is NULL for dine-in orders, so it arrives as a pointer.
func OrderTypeFromColumn(v *int64) OrderType {
	if v == nil {
		return OrderDineIn
	}
	switch *v {
	case 0:
		return OrderTakeout
	case 1:
		return OrderDelivery
	case 2:
		return OrderBarTab
	default:
		return OrderDineIn
	}
}

// LoyaltyBalances carries the loyalty account linkage recorded on a paid
// order, when a loyalty account was used to pay.
type LoyaltyBalances struct {
	AccountName   string
	CreditBalance float64
	PointBalance  float64
}

// Order is a point-in-time snapshot of one customer transaction, assembled
// from the order row, its paid-order record, line items and payments.
type Order struct {
	// ID is the internal primary key; OrderNumber is the public-facing
	// number printed on bills.
	ID          int64
	UUID        string
	OrderNumber int64

	BillNumber *int64
	TableName  *string
	PartyName  *string
	PartySize  *int64

	Type              OrderType
	CustomTakeoutType *string

	WaiterUUID *string
	WaiterName *string

	PaidAt *time.Time

	// Tax configuration captured on the paid order. Rates are fractions
	// (0.05 for 5%). StackTax2OnTax1 applies tax 2 on the tax-1-inclusive
	// amount instead of the base amount.
	TaxRate1        float64
	TaxRate2        float64
	TaxRate3        float64
	StackTax2OnTax1 bool

	OutstandingBalance *float64
	Loyalty            *LoyaltyBalances

	// SplitCount is how many ways this paid order was split. SplitBy is the
	// configured split-by value on the underlying order, used for items
	// pulled in from a linked table order.
	SplitCount int64
	SplitBy    int64

	Items    []*OrderItem
	Payments []*Payment
}

// Summary returns the allow-listed serializable view of the order, with
// nested item and payment summaries.
func (o *Order) Summary() map[string]any {
	meta := map[string]any{
		"order_uuid":          o.UUID,
		"order_id":            o.ID,
		"order_number":        o.OrderNumber,
		"order_type":          o.Type.String(),
		"bill_number":         o.BillNumber,
		"table_name":          o.TableName,
		"party_name":          o.PartyName,
		"party_size":          o.PartySize,
		"custom_takeout_type": o.CustomTakeoutType,
		"waiter_name":         o.WaiterName,
		"paid_datetime":       o.PaidAt,
		"outstanding_balance": o.OutstandingBalance,
	}
	loyalty := map[string]any{
		"loyalty_account_name":   nil,
		"loyalty_credit_balance": nil,
		"loyalty_point_balance":  nil,
	}
	if o.Loyalty != nil {
		loyalty["loyalty_account_name"] = o.Loyalty.AccountName
		loyalty["loyalty_credit_balance"] = o.Loyalty.CreditBalance
		loyalty["loyalty_point_balance"] = o.Loyalty.PointBalance
	}
	meta["loyalty_info"] = loyalty

	items := make([]map[string]any, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, it.Summary())
	}
	payments := make([]map[string]any, 0, len(o.Payments))
	for _, p := range o.Payments {
		payments = append(payments, p.Summary())
	}
	return map[string]any{
		"meta":        meta,
		"order_items": items,
		"payments":    payments,
	}
}
