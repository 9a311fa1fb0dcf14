package models

import "time"

// Loyalty activity type codes from the activity log.
const (
	LoyaltyReduceBalance int64 = 0
	LoyaltyAddBalance    int64 = 4
)

// LoyaltyActivity is one entry in the loyalty activity log: balance loaded
// onto or spent from a loyalty account. Balances can also change outside
// the POS system, so the log is only a partial view of the account.
type LoyaltyActivity struct {
	// TransactionID matches the authorization number recorded on loyalty
	// payments, which is how payments are tied to the log.
	TransactionID string

	ActivityType  int64
	Amount        float64
	AccountNumber string
	UserID        *string
	WaiterName    *string
	CreatedAt     *time.Time
}

// ActivityTypeName returns the reporting label for the activity type.
func (a *LoyaltyActivity) ActivityTypeName() string {
	switch a.ActivityType {
	case LoyaltyReduceBalance:
		return "Reduce Balance"
	case LoyaltyAddBalance:
		return "Add Balance"
	default:
		return "Unknown"
	}
}

// BalanceChange returns the activity amount signed for direction: negative
// for balance spent, positive for balance loaded.
func (a *LoyaltyActivity) BalanceChange() float64 {
	if a.ActivityType == LoyaltyReduceBalance {
		return -a.Amount
	}
	return a.Amount
}

// Summary returns the allow-listed serializable view of the activity.
func (a *LoyaltyActivity) Summary() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"transaction_id":     a.TransactionID,
			"activity_type_id":   a.ActivityType,
			"activity_type_name": a.ActivityTypeName(),
			"amount":             a.Amount,
			"balance_change":     a.BalanceChange(),
			"account_number":     a.AccountNumber,
			"user_id":            a.UserID,
			"waiter_name":        a.WaiterName,
			"datetime":           a.CreatedAt,
		},
	}
}

// CustomerAccount is a house account that can be loaded with balance and
// used to pay orders. Balances can go negative (a debt to the customer).
type CustomerAccount struct {
	ID      int64
	Name    string
	Balance float64
	Number  *int64
	Email   *string
	Phone   *string
	Note    *string

	// LedgerRef points into the account ledger join table; its column name
	// is schema-versioned, so it may be absent on unrecognized schemas.
	LedgerRef *int64
}

// Summary returns the allow-listed serializable view of the account.
func (c *CustomerAccount) Summary() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"account_id":      c.ID,
			"name":            c.Name,
			"balance":         c.Balance,
			"customer_number": c.Number,
			"email":           c.Email,
			"phone_number":    c.Phone,
			"note":            c.Note,
		},
	}
}

// Waiter is a staff member, looked up by UUID from orders, items and
// discounts.
type Waiter struct {
	UUID        string
	DisplayName string
	FirstName   string
	LastName    string
	Email       string
}

// FullName concatenates the waiter's first and last names.
func (w *Waiter) FullName() string {
	return w.FirstName + " " + w.LastName
}

// Summary returns the allow-listed serializable view of the waiter.
func (w *Waiter) Summary() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"waiter_uuid":  w.UUID,
			"display_name": w.DisplayName,
			"firstname":    w.FirstName,
			"lastname":     w.LastName,
			"email":        w.Email,
		},
	}
}
