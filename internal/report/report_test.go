package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillview/tillview/internal/models"
)

func strp(s string) *string { return &s }
func i64p(v int64) *int64   { return &v }

func fixtureOrder() *models.Order {
	paidAt := time.Date(2024, 3, 15, 21, 30, 0, 0, time.UTC)
	createdAt := paidAt.Add(-45 * time.Minute)

	food := &models.SalesCategory{UUID: "cat-food", TypeID: 1, Name: "Food"}
	liquor := &models.SalesCategory{UUID: "cat-liquor", TypeID: 2, Name: "Liquor"}

	burger := &models.OrderItem{
		ID:         100,
		Quantity:   2,
		WasSent:    true,
		CreatedAt:  &createdAt,
		WaiterName: strp("alice"),
		MenuItem:   &models.MenuItem{Name: "Burger", Price: 10, SalesCategory: food},
	}
	fries := &models.Modifier{
		MenuItem:      &models.MenuItem{Name: "Fries", Price: 3, SalesCategory: food},
		UnitPrice:     3,
		ContainerItem: burger,
	}
	salt := &models.Modifier{Text: "Extra salt", UnitPrice: 0.5, ParentModifier: fries}
	fries.Nested = []*models.Modifier{salt}
	onions := &models.Modifier{Text: "No onions", ContainerItem: burger}
	burger.Modifiers = []*models.Modifier{fries, onions}

	beer := &models.OrderItem{
		ID:         101,
		Quantity:   1,
		CreatedAt:  &createdAt,
		WaiterName: strp("alice"),
		MenuItem:   &models.MenuItem{Name: "Beer", Price: 7, SalesCategory: liquor},
	}
	beer.Discounts = []*models.Discount{{
		Type:           models.DiscountRegular,
		Amount:         2,
		Description:    "Happy hour",
		AppliedAt:      &paidAt,
		WaiterName:     strp("alice"),
		AuthorizerName: strp("alice"),
		Item:           beer,
	}}

	mistake := &models.OrderItem{
		ID:       102,
		Quantity: 1,
		MenuItem: &models.MenuItem{Name: "Burger", Price: 10, SalesCategory: food},
	}
	mistake.Discounts = []*models.Discount{{
		Type:        models.DiscountVoid,
		Amount:      3,
		Description: "Sent by mistake",
		Item:        mistake,
	}}

	return &models.Order{
		ID:          10,
		OrderNumber: 1234,
		BillNumber:  i64p(42),
		TableName:   strp("12"),
		Type:        models.OrderDineIn,
		WaiterName:  strp("alice"),
		PaidAt:      &paidAt,
		TaxRate1:    0.05,
		Loyalty:     &models.LoyaltyBalances{AccountName: "Frequent Fred", PointBalance: 120},
		Items:       []*models.OrderItem{burger, beer, mistake},
		Payments: []*models.Payment{
			{
				Number: 1,
				Type:   models.PaymentCash,
				Amount: 20,
				Tip:    2,
			},
			{
				Number:     2,
				Type:       models.PaymentElectronic,
				Amount:     10,
				CardType:   strp("Loyalty"),
				AuthNumber: strp("LOY123"),
				Loyalty: &models.LoyaltyActivity{
					TransactionID: "LOY123",
					ActivityType:  models.LoyaltyReduceBalance,
					Amount:        10,
					AccountNumber: "ACCT-77",
					CreatedAt:     &paidAt,
				},
			},
		},
	}
}

func recordsOfType(records []Record, objectType string) []Record {
	var out []Record
	for _, r := range records {
		if r["object_type"] == objectType {
			out = append(out, r)
		}
	}
	return out
}

func TestExplode(t *testing.T) {
	records := Explode(fixtureOrder())

	// 1 order + 2 items + 3 modifiers + 1 discount + 2 payments + 1 loyalty.
	require.Len(t, records, 10)

	order := records[0]
	assert.Equal(t, ObjectOrder, order["object_type"])
	assert.Equal(t, int64(1234), order["order_number"])
	assert.Equal(t, "dinein", order["order_type"])
	assert.InDelta(t, 28.5, order["subtotal"], 1e-9)
	assert.InDelta(t, 1.43, order["taxes"], 1e-9)
	assert.InDelta(t, 29.93, order["total"], 1e-9)

	items := recordsOfType(records, ObjectItem)
	require.Len(t, items, 2, "voided item must be dropped")
	assert.Equal(t, "Burger", items[0]["name"])
	assert.Equal(t, 2.0, items[0]["quantity"])
	assert.Equal(t, "Food", items[0]["sales_category"])
	assert.Equal(t, true, items[0]["was_sent"])
	assert.Equal(t, "Beer", items[1]["name"])

	mods := recordsOfType(records, ObjectModifier)
	require.Len(t, mods, 3)
	assert.Equal(t, "Fries", mods[0]["name"])
	assert.Equal(t, 3.0, mods[0]["price"])
	assert.Equal(t, "Extra salt", mods[1]["name"], "nested modifiers follow their parent")
	assert.Equal(t, "Food", mods[1]["sales_category"], "free text inherits the container category")
	assert.Equal(t, "No onions", mods[2]["name"])

	discounts := recordsOfType(records, ObjectDiscount)
	require.Len(t, discounts, 1)
	assert.Equal(t, "Happy hour", discounts[0]["name"])
	assert.Equal(t, "Liquor", discounts[0]["sales_category"])
	assert.InDelta(t, -2.0, discounts[0]["price"], 1e-9)
	assert.Equal(t, "Discount", discounts[0]["discount_type"])

	payments := recordsOfType(records, ObjectPayment)
	require.Len(t, payments, 2)
	assert.Equal(t, "Cash", payments[0]["payment_type"])
	assert.Equal(t, 1, payments[0]["payment_number"])

	loyalty := recordsOfType(records, ObjectLoyalty)
	require.Len(t, loyalty, 1)
	assert.Equal(t, "Reduce Balance", loyalty[0]["name"])
	assert.Equal(t, -10.0, loyalty[0]["amount"])
	assert.Equal(t, "LOY123", loyalty[0]["auth_number"])
	// Loyalty records keep the enclosing order's identifiers.
	assert.Equal(t, int64(1234), loyalty[0]["order_number"])
}

func TestDiscountSplitAcrossCategories(t *testing.T) {
	food := &models.SalesCategory{Name: "Food"}
	liquor := &models.SalesCategory{Name: "Liquor"}

	it := &models.OrderItem{
		Quantity: 1,
		MenuItem: &models.MenuItem{Name: "Steak", Price: 7, SalesCategory: food},
	}
	it.Modifiers = []*models.Modifier{{
		MenuItem:      &models.MenuItem{Name: "Wine pairing", Price: 3, SalesCategory: liquor},
		UnitPrice:     3,
		ContainerItem: it,
	}}
	d := &models.Discount{Type: models.DiscountRegular, Amount: 1, Description: "Promo", Item: it}
	it.Discounts = []*models.Discount{d}

	o := &models.Order{OrderNumber: 1, Items: []*models.OrderItem{it}}
	discounts := recordsOfType(Explode(o), ObjectDiscount)
	require.Len(t, discounts, 2)

	// Sorted by category name for deterministic output.
	assert.Equal(t, "Food", discounts[0]["sales_category"])
	assert.InDelta(t, -0.7, discounts[0]["price"], 1e-9)
	assert.Equal(t, "Liquor", discounts[1]["sales_category"])
	assert.InDelta(t, -0.3, discounts[1]["price"], 1e-9)
}

func TestWriteOrdersCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrdersCSV(&buf, []*models.Order{fixtureOrder()}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 11, "header plus ten records")
	assert.Equal(t, Fields(), rows[0])

	header := rows[0]
	col := func(name string) int {
		for i, field := range header {
			if field == name {
				return i
			}
		}
		t.Fatalf("column %s not in header", name)
		return -1
	}
	assert.Equal(t, "Order", rows[1][col("object_type")])
	assert.Equal(t, "1234", rows[1][col("order_number")])
	assert.Equal(t, "2024-03-15 09:30:00 PM", rows[1][col("datetime")])
	assert.Equal(t, "28.5", rows[1][col("subtotal")])
}

func TestWriteLoyaltyCSV(t *testing.T) {
	createdAt := time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC)
	activities := []*models.LoyaltyActivity{{
		TransactionID: "LOY124",
		ActivityType:  models.LoyaltyAddBalance,
		Amount:        25,
		AccountNumber: "ACCT-77",
		CreatedAt:     &createdAt,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteLoyaltyCSV(&buf, activities))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	joined := strings.Join(row, ",")
	assert.Contains(t, joined, "LOY124")
	assert.Contains(t, joined, "Add Balance")
	assert.Contains(t, joined, "2024-03-15 09:05:00 AM")
}

func TestWriteOrderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOrderJSON(&buf, fixtureOrder()))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	meta, ok := out["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1234), meta["order_number"])
}

func TestReceipt(t *testing.T) {
	text := Receipt(fixtureOrder())

	assert.Contains(t, text, "ORDER DETAILS FOR ORDER #1234")
	assert.Contains(t, text, "Table Name: 12")
	assert.Contains(t, text, "Server Name: alice")
	assert.Contains(t, text, "2 x Burger")
	assert.Contains(t, text, "+ $3.00: Fries")
	assert.Contains(t, text, "+ Extra salt")
	assert.Contains(t, text, "+ No onions")
	assert.Contains(t, text, "- $2.00: Happy hour Discount")
	assert.Contains(t, text, "Item Subtotal:  $5.00")
	assert.Contains(t, text, "Subtotal:  $28.50")
	assert.Contains(t, text, "TOTAL:  $29.93")
	assert.Contains(t, text, "Payment  1: CASH")
	assert.Contains(t, text, "LOYALTY [LOY123]")
	assert.Contains(t, text, "Loyalty Customer: Frequent Fred")
	assert.Contains(t, text, "Loyalty Point Balance: $120.00")
}
