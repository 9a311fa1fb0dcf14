package report

import (
	"fmt"
	"strings"

	"github.com/tillview/tillview/internal/calculator"
	"github.com/tillview/tillview/internal/models"
)

const receiptTimeLayout = "2006-01-02 03:04:05 PM"

const receiptRule = "-----------------------------------------------\n"

// Receipt renders the order in a receipt-like format.
func Receipt(o *models.Order) string {
	var b strings.Builder

	paidAt := "None"
	if o.PaidAt != nil {
		paidAt = o.PaidAt.Format(receiptTimeLayout)
	}
	fmt.Fprintf(&b, "\n       ORDER DETAILS FOR ORDER #%d\n\n", o.OrderNumber)
	fmt.Fprintf(&b, "Order Date/Time:     \t%s\n", paidAt)
	fmt.Fprintf(&b, "Table Name: %s\tParty Name: %s\n", deref(o.TableName), deref(o.PartyName))
	fmt.Fprintf(&b, "Bill Number: %s\tOrder Type: %s\n", derefInt(o.BillNumber), o.Type)
	fmt.Fprintf(&b, "Server Name: %s\n", deref(o.WaiterName))
	if o.CustomTakeoutType != nil {
		fmt.Fprintf(&b, "Takeout Type: %s\n", *o.CustomTakeoutType)
	}
	b.WriteString("\n" + receiptRule + "\n")

	for _, it := range o.Items {
		writeItemReceipt(&b, it)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(receiptRule)
	fmt.Fprintf(&b, "                            Subtotal:  $%3.2f\n", calculator.OrderSubtotal(o))
	fmt.Fprintf(&b, "                                 Tax:  $%3.2f\n", calculator.OrderTaxes(o))
	b.WriteString(receiptRule)
	fmt.Fprintf(&b, "                               TOTAL:  $%3.2f\n", calculator.OrderTotal(o))

	for _, p := range o.Payments {
		writePaymentReceipt(&b, p)
	}
	b.WriteString("\n")

	if o.Loyalty != nil {
		fmt.Fprintf(&b, "Loyalty Customer: %s\n", o.Loyalty.AccountName)
		if o.Loyalty.CreditBalance != 0 {
			fmt.Fprintf(&b, "Loyalty Credit Balance: $%3.2f\n", o.Loyalty.CreditBalance)
		}
		if o.Loyalty.PointBalance != 0 {
			fmt.Fprintf(&b, "Loyalty Point Balance: $%3.2f\n", o.Loyalty.PointBalance)
		}
	}
	return b.String()
}

func writeItemReceipt(b *strings.Builder, it *models.OrderItem) {
	name := ""
	if qty := it.EffectiveQuantity(); qty > 1 {
		name = fmt.Sprintf("%g x ", qty)
	}
	name += it.Name()
	fmt.Fprintf(b, "%-38s $%3.2f\n", name, calculator.ItemPrice(it))

	hasPriceLine := false
	writeModifierReceipts(b, it.Modifiers, "  ", &hasPriceLine)
	for _, d := range it.Discounts {
		fmt.Fprintf(b, "  - $%.2f: %s %s\n", calculator.DiscountAmount(d), d.Description, d.Type)
		if d.Amount != 0 {
			hasPriceLine = true
		}
	}
	if hasPriceLine {
		fmt.Fprintf(b, "%sItem Subtotal:  $%3.2f\n", strings.Repeat(" ", 23), calculator.ItemSubtotal(it))
	}
}

func writeModifierReceipts(b *strings.Builder, mods []*models.Modifier, indent string, hasPriceLine *bool) {
	for _, m := range mods {
		b.WriteString(indent + "+ ")
		if m.Price() > 0 {
			fmt.Fprintf(b, "$%3.2f: ", m.Price())
			*hasPriceLine = true
		}
		b.WriteString(m.Name() + "\n")
		writeModifierReceipts(b, m.Nested, indent+"  ", hasPriceLine)
	}
}

func writePaymentReceipt(b *strings.Builder, p *models.Payment) {
	payType := "CASH"
	if p.Type != models.PaymentCash {
		payType = strings.ToUpper(deref(p.CardType))
	}
	if p.AuthNumber != nil && *p.AuthNumber != "" {
		payType += fmt.Sprintf(" [%s]", *p.AuthNumber)
	}
	fmt.Fprintf(b, "Payment %2d: %-20s       $%3.2f\n", p.Number, payType, p.Amount)
	fmt.Fprintf(b, "%sTip:  $%3.2f\n", strings.Repeat(" ", 33), p.Tip)
	fmt.Fprintf(b, "%sRemaining Balance:  $%3.2f\n", strings.Repeat(" ", 19), p.Balance)
	if p.Type == models.PaymentCustomerAccount && p.CustomerAccountID != nil {
		fmt.Fprintf(b, "%45s\n", fmt.Sprintf("Account ID: %6d", *p.CustomerAccountID))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}
