package models

import "time"

// PaymentType classifies how a payment was made, from the raw type column.
type PaymentType int

const (
	PaymentCash            PaymentType = 0
	PaymentElectronic      PaymentType = 1
	PaymentCustomerAccount PaymentType = 5
)

// String returns the reporting label for the payment type.
func (t PaymentType) String() string {
	switch t {
	case PaymentCash:
		return "Cash"
	case PaymentElectronic:
		return "Electronic"
	case PaymentCustomerAccount:
		return "Customer Account"
	default:
		return "Unknown"
	}
}

// Payment is one payment within an order's payment group.
type Payment struct {
	UUID string

	// Number is the human-readable payment number within the group,
	// starting at 1.
	Number int

	Type PaymentType

	Amount           float64
	Tip              float64
	Change           float64
	Balance          float64
	RefundableAmount float64

	CardType   *string
	AuthNumber *string

	// OriginalPaymentUUID links a refund back to the payment it refunds.
	// Refund detection itself is unsupported; see IsRefund.
	OriginalPaymentUUID *string

	CustomerAccountID *int64
	CustomerID        *int64

	PaidAt *time.Time

	// Loyalty is set when the payment was made from a loyalty account,
	// matched through the payment's authorization number.
	Loyalty *LoyaltyActivity

	// Account is set for customer-account payments.
	Account *CustomerAccount
}

// IsRefund would report whether this payment is a refund of another. The
// original-payment linkage is populated inconsistently by the POS system,
// so answering this reliably is not possible; callers get an explicit
// error instead of a guess.
func (p *Payment) IsRefund() (bool, error) {
	return false, ErrNotImplemented
}

// IsLoyalty reports whether the payment drew on a loyalty account.
func (p *Payment) IsLoyalty() bool {
	return p.Loyalty != nil
}

// Summary returns the allow-listed serializable view of the payment.
func (p *Payment) Summary() map[string]any {
	meta := map[string]any{
		"payment_uuid":        p.UUID,
		"payment_number":      p.Number,
		"payment_type":        p.Type.String(),
		"payment_type_id":     int(p.Type),
		"amount":              p.Amount,
		"tip":                 p.Tip,
		"change":              p.Change,
		"balance":             p.Balance,
		"refundable_amount":   p.RefundableAmount,
		"card_type":           p.CardType,
		"auth_number":         p.AuthNumber,
		"customer_account_id": p.CustomerAccountID,
		"customer_id":         p.CustomerID,
		"datetime":            p.PaidAt,
	}
	out := map[string]any{"meta": meta}
	if p.Loyalty != nil {
		out["loyalty_activity"] = p.Loyalty.Summary()
	}
	if p.Account != nil {
		out["customer_account"] = p.Account.Summary()
	}
	return out
}
