package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillview/tillview/internal/dates"
	"github.com/tillview/tillview/internal/models"
	"github.com/tillview/tillview/internal/storage"
)

const (
	waiterUUID  = "2c9e40aa-52a0-4aae-b814-2f0101e4a1f1"
	burgerUUID  = "6a1276bd-6f2a-44f3-9bbd-4b9c1f8cb771"
	friesUUID   = "9d03be11-5a34-49f2-84d1-1c0fcd73b6e2"
	beerUUID    = "f3d4f2ce-0f6b-4a6e-8b5f-7688cb2016d3"
	orderUUID   = "0b7f0a34-3f53-4b9e-9b64-52d8cb2fd9a0"
	missingUUID = "c9a7e9be-4d1c-4f02-a4ef-0f5c9d7e8a11"
)

var paidAt = time.Date(2024, 3, 15, 21, 30, 0, 0, time.UTC)

func exec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	_, err := db.Exec(query, args...)
	require.NoError(t, err, "exec %s", query)
}

// newFixtureDB builds a minimal POS database covering the tables this
// package queries, using join table version 55 and ledger column version 79
// so the tests prove the probing paths.
func newFixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "restaurant.sql")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, ddl := range []string{
		`CREATE TABLE ZORDER (Z_PK INTEGER PRIMARY KEY, ZUUID TEXT,
			ZORDERNUMBER INTEGER, ZPARTYASSPLITORDER INTEGER,
			ZI_SPLITBY INTEGER, ZPAIDORDER INTEGER)`,
		`CREATE TABLE ZPAIDORDER (Z_PK INTEGER PRIMARY KEY, ZPAYDATE REAL,
			ZI_BILLNUMBER INTEGER, ZI_TAKEOUTTYPE INTEGER, ZI_PARTYSIZE INTEGER,
			ZI_SPLIT INTEGER, ZI_TAX1 REAL, ZI_TAX2 REAL, ZI_TAX3 REAL,
			ZI_TAX2ONTAX1 INTEGER, ZOUTSTANDINGBALANCE REAL, ZPARTYNAME TEXT,
			ZTABLENAME TEXT, ZPAYMENTS INTEGER, ZLOYALTYACCOUNTNAME TEXT,
			ZLOYALTYCREDITBALANCE REAL, ZLOYALTYPOINTSBALANCE REAL,
			ZCLOSEDTAKEOUT INTEGER, ZWAITERUUID TEXT)`,
		`CREATE TABLE ZCLOSEDTAKEOUT (Z_PK INTEGER PRIMARY KEY,
			ZCUSTOMTAKEOUTTYPE INTEGER)`,
		`CREATE TABLE ZCUSTOMTAKEOUTTYPE (Z_PK INTEGER PRIMARY KEY, ZNAME TEXT)`,
		`CREATE TABLE ZWAITER (ZUUID TEXT, ZDISPLAYNAME TEXT, ZFIRSTNAME TEXT,
			ZLASTNAME TEXT, ZEMAIL TEXT)`,
		`CREATE TABLE Z_55I_ORDERITEMS (Z_55I_ORDERS INTEGER,
			Z_56I_ORDERITEMS INTEGER)`,
		`CREATE TABLE ZORDERITEM (Z_PK INTEGER PRIMARY KEY, ZMENUITEMUUID TEXT,
			ZI_QUANTITY REAL, ZI_OPENPRICE REAL, ZI_COURSE INTEGER,
			ZI_SENT INTEGER, ZSENTTIME REAL, ZCREATEDATE REAL,
			ZWAITERID TEXT, ZI_INDEX INTEGER)`,
		`CREATE TABLE ZMODIFIER (Z_PK INTEGER PRIMARY KEY, ZUUID TEXT,
			ZREQUIREDMODIFIER INTEGER, ZMENUITEM INTEGER, ZORDERITEM INTEGER,
			ZI_PRICE REAL, ZI_NAME TEXT, ZCONTAINERORDERITEM INTEGER,
			ZI_INDEX INTEGER)`,
		`CREATE TABLE ZDISCOUNT (Z_PK INTEGER PRIMARY KEY, ZUUID TEXT,
			ZI_TYPE INTEGER, ZI_AMOUNT REAL, ZDISCOUNTDESCRIPTION TEXT,
			ZTAXABLE INTEGER, ZRETURNSINVENTORY INTEGER, ZVOIDDATE REAL,
			ZWAITERUUID TEXT, ZMANAGERUUID TEXT, ZORDERITEM INTEGER,
			ZI_INDEX INTEGER)`,
		`CREATE TABLE ZPAYMENT (Z_PK INTEGER PRIMARY KEY, ZUUID TEXT,
			ZI_INDEX INTEGER, ZI_TYPE INTEGER, ZI_AMOUNT REAL, ZTIP REAL,
			ZI_CHANGE REAL, ZBALANCE REAL, ZI_REFUNDABLEAMOUNT REAL,
			ZCARDTYPE TEXT, ZAUTH TEXT, ZORIGINALPAYMENTUUID TEXT,
			ZACCOUNT INTEGER, ZCUSTOMER INTEGER, ZCREATEDATE REAL,
			ZPAYMENTGROUP INTEGER)`,
		`CREATE TABLE ZMENUITEM (Z_PK INTEGER PRIMARY KEY, ZUUID TEXT,
			ZNAME TEXT, ZI_PRICE REAL, ZI_EXCLUDETAX1 INTEGER,
			ZI_EXCLUDETAX2 INTEGER, ZI_EXCLUDETAX3 INTEGER, ZTYPE INTEGER)`,
		`CREATE TABLE ZITEMTYPE (ZUUID TEXT, ZNAME TEXT, ZTYPEID INTEGER)`,
		`CREATE TABLE ZLOYALTYACTIVITYLOG (ZTRANSACTIONID TEXT,
			ZACTIVITYTYPE INTEGER, ZAMOUNT REAL, ZUSERNAME TEXT, ZUSERID TEXT,
			ZCREATEDAT REAL, ZWAITERUUID TEXT)`,
		`CREATE TABLE ZTBACCOUNT (Z_PK INTEGER PRIMARY KEY, ZNAME TEXT,
			ZBALANCE REAL, ZNUMBER INTEGER, ZEMAIL TEXT, ZPHONENUMBER TEXT,
			ZNOTE TEXT, Z79ACCOUNTS INTEGER)`,
	} {
		exec(t, db, ddl)
	}

	exec(t, db, `INSERT INTO ZWAITER VALUES (?, 'alice', 'Alice', 'Bell', 'alice@example.com')`,
		waiterUUID)

	exec(t, db, `INSERT INTO ZITEMTYPE VALUES ('cat-food', 'Food', 1)`)
	exec(t, db, `INSERT INTO ZITEMTYPE VALUES ('cat-liquor', 'Liquor', 2)`)
	exec(t, db, `INSERT INTO ZMENUITEM VALUES (1, ?, 'Burger', 10.0, 0, 0, 0, 1)`, burgerUUID)
	exec(t, db, `INSERT INTO ZMENUITEM VALUES (2, ?, 'Fries', 3.0, 0, 0, 0, 1)`, friesUUID)
	exec(t, db, `INSERT INTO ZMENUITEM VALUES (3, ?, 'Beer', 7.0, 0, 1, 0, 2)`, beerUUID)

	// Order 10: dine-in, three line items, three payments.
	exec(t, db, `INSERT INTO ZPAIDORDER VALUES (20, ?, 42, NULL, 2, 0,
			0.05, 0.10, 0.0, 0, 0.0, NULL, '12', 30,
			'Frequent Fred', 5.0, 120.0, NULL, ?)`,
		dates.ToCocoa(paidAt), waiterUUID)
	exec(t, db, `INSERT INTO ZORDER VALUES (10, ?, 1234, NULL, NULL, 20)`, orderUUID)

	exec(t, db, `INSERT INTO ZORDERITEM VALUES
			(100, ?, 2.0, NULL, 1, 1, ?, ?, ?, 0)`,
		burgerUUID, dates.ToCocoa(paidAt.Add(-30*time.Minute)),
		dates.ToCocoa(paidAt.Add(-45*time.Minute)), waiterUUID)
	exec(t, db, `INSERT INTO ZORDERITEM VALUES
			(101, ?, 1.0, NULL, 1, 0, NULL, ?, ?, 1)`,
		beerUUID, dates.ToCocoa(paidAt.Add(-40*time.Minute)), waiterUUID)
	exec(t, db, `INSERT INTO ZORDERITEM VALUES
			(102, ?, 1.0, NULL, 2, 0, NULL, ?, ?, 2)`,
		burgerUUID, dates.ToCocoa(paidAt.Add(-35*time.Minute)), waiterUUID)
	for _, itemPK := range []int64{100, 101, 102} {
		exec(t, db, `INSERT INTO Z_55I_ORDERITEMS VALUES (10, ?)`, itemPK)
	}

	// Burger modifiers: a menu-item modifier (fries) whose own order item
	// row 103 carries a nested free-text modifier, then a free-text one.
	exec(t, db, `INSERT INTO ZMODIFIER VALUES
			(200, 'mod-fries', 1, 2, 103, 3.0, NULL, 100, 0)`)
	exec(t, db, `INSERT INTO ZMODIFIER VALUES
			(201, 'mod-onions', 0, NULL, NULL, 0.0, 'No onions', 100, 1)`)
	exec(t, db, `INSERT INTO ZMODIFIER VALUES
			(202, 'mod-salt', 0, NULL, NULL, 0.5, 'Extra salt', 103, 0)`)

	// Beer gets a $2 discount; the second burger is voided.
	exec(t, db, `INSERT INTO ZDISCOUNT VALUES
			(300, 'disc-beer', 1, 2.0, 'Happy hour', 1, 0, ?, ?, ?, 101, 0)`,
		dates.ToCocoa(paidAt.Add(-20*time.Minute)), waiterUUID, waiterUUID)
	exec(t, db, `INSERT INTO ZDISCOUNT VALUES
			(301, 'disc-void', 0, 3.0, 'Sent by mistake', 0, 1, ?, ?, ?, 102, 0)`,
		dates.ToCocoa(paidAt.Add(-10*time.Minute)), waiterUUID, waiterUUID)

	exec(t, db, `INSERT INTO ZPAYMENT VALUES
			(400, 'pay-cash', 0, 0, 20.0, 2.0, 0.0, 10.55, 0.0,
			NULL, NULL, NULL, NULL, NULL, ?, 30)`,
		dates.ToCocoa(paidAt))
	exec(t, db, `INSERT INTO ZPAYMENT VALUES
			(401, 'pay-loyalty', 1, 1, 5.0, 0.0, 0.0, 5.55, 0.0,
			'Loyalty', 'LOY123', NULL, NULL, NULL, ?, 30)`,
		dates.ToCocoa(paidAt))
	exec(t, db, `INSERT INTO ZPAYMENT VALUES
			(402, 'pay-account', 2, 5, 5.55, 0.0, 0.0, 0.0, 0.0,
			NULL, NULL, NULL, 1, 7, ?, 30)`,
		dates.ToCocoa(paidAt))

	exec(t, db, `INSERT INTO ZLOYALTYACTIVITYLOG VALUES
			('LOY123', 0, 5.0, 'ACCT-77', 'user-9', ?, ?)`,
		dates.ToCocoa(paidAt), waiterUUID)
	exec(t, db, `INSERT INTO ZLOYALTYACTIVITYLOG VALUES
			('LOY124', 4, 25.0, 'ACCT-77', 'user-9', ?, ?)`,
		dates.ToCocoa(paidAt.Add(3*time.Hour)), waiterUUID)

	exec(t, db, `INSERT INTO ZTBACCOUNT VALUES
			(1, 'Office Lunch Club', -12.5, 88, 'club@example.com',
			'555-0100', 'net 30', 7)`)

	// Order 11: a split pulled from table order 12, which splits four ways.
	exec(t, db, `INSERT INTO ZORDER VALUES (12, 'linked', 1300, NULL, 4, NULL)`)
	exec(t, db, `INSERT INTO ZPAIDORDER VALUES (21, ?, 43, 2, 1, 1,
			0.05, 0.0, 0.0, 0, 0.0, NULL, NULL, NULL,
			NULL, NULL, NULL, NULL, ?)`,
		dates.ToCocoa(paidAt.Add(time.Hour)), waiterUUID)
	exec(t, db, `INSERT INTO ZORDER VALUES (11, 'split-uuid', 1235, 12, NULL, 21)`)
	exec(t, db, `INSERT INTO ZORDERITEM VALUES
			(110, ?, 4.0, NULL, 1, 0, NULL, ?, ?, 0)`,
		beerUUID, dates.ToCocoa(paidAt), waiterUUID)
	exec(t, db, `INSERT INTO Z_55I_ORDERITEMS VALUES (11, 110)`)

	return path
}

func newFixtureStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(newFixtureDB(t), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.sql"), time.UTC)
	require.Error(t, err)
}

func TestOrderByNumber(t *testing.T) {
	store := newFixtureStore(t)
	ctx := context.Background()

	o, err := store.OrderByNumber(ctx, 1234)
	require.NoError(t, err)

	assert.Equal(t, int64(10), o.ID)
	assert.Equal(t, orderUUID, o.UUID)
	assert.Equal(t, int64(1234), o.OrderNumber)
	require.NotNil(t, o.BillNumber)
	assert.Equal(t, int64(42), *o.BillNumber)
	assert.Equal(t, models.OrderDineIn, o.Type)
	require.NotNil(t, o.TableName)
	assert.Equal(t, "12", *o.TableName)
	require.NotNil(t, o.WaiterName)
	assert.Equal(t, "alice", *o.WaiterName)
	require.NotNil(t, o.PaidAt)
	assert.True(t, o.PaidAt.Equal(paidAt))
	assert.Equal(t, 0.05, o.TaxRate1)
	assert.Equal(t, 0.10, o.TaxRate2)
	assert.False(t, o.StackTax2OnTax1)
	require.NotNil(t, o.Loyalty)
	assert.Equal(t, "Frequent Fred", o.Loyalty.AccountName)
	assert.Equal(t, 120.0, o.Loyalty.PointBalance)

	require.Len(t, o.Items, 3)
	burger, beer, voided := o.Items[0], o.Items[1], o.Items[2]

	assert.Equal(t, "Burger", burger.Name())
	assert.Equal(t, 2.0, burger.Quantity)
	assert.True(t, burger.WasSent)
	require.NotNil(t, burger.SentAt)
	require.NotNil(t, burger.SalesCategory())
	assert.Equal(t, "Food", burger.SalesCategory().Name)

	require.Len(t, burger.Modifiers, 2)
	fries, onions := burger.Modifiers[0], burger.Modifiers[1]
	assert.Equal(t, "Fries", fries.Name())
	assert.True(t, fries.Required)
	assert.Equal(t, 3.0, fries.Price())
	assert.Same(t, burger, fries.ContainerItem)
	require.Len(t, fries.Nested, 1)
	assert.Equal(t, "Extra salt", fries.Nested[0].Name())
	assert.Equal(t, 0.5, fries.Nested[0].Price())
	assert.Same(t, fries, fries.Nested[0].ParentModifier)
	assert.Equal(t, "No onions", onions.Name())
	assert.Nil(t, onions.MenuItem)

	assert.Equal(t, "Beer", beer.Name())
	require.NotNil(t, beer.MenuItem)
	assert.True(t, beer.MenuItem.ExcludesTax(2))
	require.Len(t, beer.Discounts, 1)
	d := beer.Discounts[0]
	assert.Equal(t, models.DiscountRegular, d.Type)
	assert.Equal(t, 2.0, d.Amount)
	assert.Equal(t, "Happy hour", d.Description)
	assert.Same(t, beer, d.Item)
	assert.False(t, beer.WasVoided())

	require.Len(t, voided.Discounts, 1)
	assert.Equal(t, models.DiscountVoid, voided.Discounts[0].Type)
	assert.True(t, voided.WasVoided())

	require.Len(t, o.Payments, 3)
	cash, loyalty, account := o.Payments[0], o.Payments[1], o.Payments[2]
	assert.Equal(t, 1, cash.Number)
	assert.Equal(t, models.PaymentCash, cash.Type)
	assert.Equal(t, 20.0, cash.Amount)
	assert.Equal(t, 2.0, cash.Tip)
	assert.False(t, cash.IsLoyalty())

	assert.Equal(t, 2, loyalty.Number)
	assert.True(t, loyalty.IsLoyalty())
	require.NotNil(t, loyalty.Loyalty)
	assert.Equal(t, "LOY123", loyalty.Loyalty.TransactionID)
	assert.Equal(t, -5.0, loyalty.Loyalty.BalanceChange())

	assert.Equal(t, models.PaymentCustomerAccount, account.Type)
	require.NotNil(t, account.Account)
	assert.Equal(t, "Office Lunch Club", account.Account.Name)
	assert.Equal(t, -12.5, account.Account.Balance)
	require.NotNil(t, account.Account.LedgerRef)
	assert.Equal(t, int64(7), *account.Account.LedgerRef)
}

func TestOrderNotFound(t *testing.T) {
	store := newFixtureStore(t)
	_, err := store.OrderByNumber(context.Background(), 99999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJoinTableProbeCached(t *testing.T) {
	store := newFixtureStore(t)
	ctx := context.Background()

	assert.Equal(t, 0, store.versions.joinVersion())
	_, err := store.OrderByNumber(ctx, 1234)
	require.NoError(t, err)
	assert.Equal(t, 55, store.versions.joinVersion())

	// Second load must reuse the cached version.
	_, err = store.OrderByNumber(ctx, 1234)
	require.NoError(t, err)
	assert.Equal(t, 55, store.versions.joinVersion())
	assert.Equal(t, 79, store.versions.accountsVersion())
}

func TestUnrecognizedSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.sql")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	exec(t, db, `CREATE TABLE ZORDER (Z_PK INTEGER PRIMARY KEY, ZUUID TEXT,
		ZORDERNUMBER INTEGER, ZPARTYASSPLITORDER INTEGER,
		ZI_SPLITBY INTEGER, ZPAIDORDER INTEGER)`)
	exec(t, db, `CREATE TABLE ZPAIDORDER (Z_PK INTEGER PRIMARY KEY, ZPAYDATE REAL,
		ZI_BILLNUMBER INTEGER, ZI_TAKEOUTTYPE INTEGER, ZI_PARTYSIZE INTEGER,
		ZI_SPLIT INTEGER, ZI_TAX1 REAL, ZI_TAX2 REAL, ZI_TAX3 REAL,
		ZI_TAX2ONTAX1 INTEGER, ZOUTSTANDINGBALANCE REAL, ZPARTYNAME TEXT,
		ZTABLENAME TEXT, ZPAYMENTS INTEGER, ZLOYALTYACCOUNTNAME TEXT,
		ZLOYALTYCREDITBALANCE REAL, ZLOYALTYPOINTSBALANCE REAL,
		ZCLOSEDTAKEOUT INTEGER, ZWAITERUUID TEXT)`)
	exec(t, db, `CREATE TABLE ZCLOSEDTAKEOUT (Z_PK INTEGER PRIMARY KEY,
		ZCUSTOMTAKEOUTTYPE INTEGER)`)
	exec(t, db, `CREATE TABLE ZCUSTOMTAKEOUTTYPE (Z_PK INTEGER PRIMARY KEY, ZNAME TEXT)`)
	exec(t, db, `CREATE TABLE ZWAITER (ZUUID TEXT, ZDISPLAYNAME TEXT,
		ZFIRSTNAME TEXT, ZLASTNAME TEXT, ZEMAIL TEXT)`)
	exec(t, db, `INSERT INTO ZORDER VALUES (1, 'x', 7, NULL, NULL, NULL)`)
	require.NoError(t, db.Close())

	store, err := New(path, time.UTC)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.OrderByNumber(context.Background(), 7)
	assert.ErrorIs(t, err, storage.ErrSchemaNotRecognized)
}

func TestSplitOrderDivisor(t *testing.T) {
	store := newFixtureStore(t)

	o, err := store.OrderByNumber(context.Background(), 1235)
	require.NoError(t, err)
	assert.Equal(t, models.OrderBarTab, o.Type)
	require.Len(t, o.Items, 1)

	// Divisor comes from the linked table order, not the paid order's own
	// split count.
	assert.Equal(t, int64(4), o.Items[0].SplitDivisor)
	assert.Equal(t, 1.0, o.Items[0].EffectiveQuantity())
}

func TestOrdersInRange(t *testing.T) {
	store := newFixtureStore(t)
	ctx := context.Background()

	orders, err := store.OrdersInRange(ctx, paidAt.Add(-time.Minute), paidAt.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(1234), orders[0].OrderNumber)

	orders, err = store.OrdersInRange(ctx, paidAt.Add(-time.Minute), paidAt.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(1234), orders[0].OrderNumber)
	assert.Equal(t, int64(1235), orders[1].OrderNumber)

	orders, err = store.OrdersInRange(ctx, paidAt.Add(24*time.Hour), paidAt.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestLoyaltyInRange(t *testing.T) {
	store := newFixtureStore(t)

	activities, err := store.LoyaltyInRange(context.Background(),
		paidAt.Add(-time.Minute), paidAt.Add(4*time.Hour))
	require.NoError(t, err)
	require.Len(t, activities, 2)

	assert.Equal(t, "LOY123", activities[0].TransactionID)
	assert.Equal(t, "Reduce Balance", activities[0].ActivityTypeName())
	require.NotNil(t, activities[0].WaiterName)
	assert.Equal(t, "alice", *activities[0].WaiterName)

	assert.Equal(t, "LOY124", activities[1].TransactionID)
	assert.Equal(t, 25.0, activities[1].BalanceChange())
}

func TestCustomerAccountNotFound(t *testing.T) {
	store := newFixtureStore(t)
	_, err := store.CustomerAccount(context.Background(), 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWaiter(t *testing.T) {
	store := newFixtureStore(t)
	ctx := context.Background()

	w, err := store.Waiter(ctx, waiterUUID)
	require.NoError(t, err)
	assert.Equal(t, "alice", w.DisplayName)
	assert.Equal(t, "Alice Bell", w.FullName())

	_, err = store.Waiter(ctx, missingUUID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Waiter(ctx, "not-a-uuid")
	var integrity *models.IntegrityError
	assert.ErrorAs(t, err, &integrity)
}

func TestMalformedMenuItemUUID(t *testing.T) {
	store := newFixtureStore(t)
	_, err := store.menuItemByUUID(context.Background(), "garbage")
	var integrity *models.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "menu item", integrity.Entity)
}
