package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tillview/tillview/internal/dates"
	"github.com/tillview/tillview/internal/models"
	"github.com/tillview/tillview/internal/storage"
)

// orderSelect joins the order row to its paid-order record, the waiter who
// closed the bill, and the custom takeout type label.
const orderSelect = `SELECT
		o.Z_PK, o.ZUUID, o.ZORDERNUMBER, o.ZPARTYASSPLITORDER, o.ZI_SPLITBY,
		p.ZPAYDATE, p.ZI_BILLNUMBER, p.ZI_TAKEOUTTYPE, p.ZI_PARTYSIZE, p.ZI_SPLIT,
		p.ZI_TAX1, p.ZI_TAX2, p.ZI_TAX3, p.ZI_TAX2ONTAX1,
		p.ZOUTSTANDINGBALANCE, p.ZPARTYNAME, p.ZTABLENAME, p.ZPAYMENTS,
		p.ZLOYALTYACCOUNTNAME, p.ZLOYALTYCREDITBALANCE, p.ZLOYALTYPOINTSBALANCE,
		w.ZDISPLAYNAME, w.ZUUID, ct.ZNAME
	FROM ZORDER o
	LEFT JOIN ZPAIDORDER p ON p.Z_PK = o.ZPAIDORDER
	LEFT JOIN ZCLOSEDTAKEOUT c ON c.Z_PK = p.ZCLOSEDTAKEOUT
	LEFT JOIN ZCUSTOMTAKEOUTTYPE ct ON ct.Z_PK = c.ZCUSTOMTAKEOUTTYPE
	LEFT JOIN ZWAITER w ON w.ZUUID = p.ZWAITERUUID`

// OrderByNumber loads the full entity graph for the order with the given
// public order number. The same number can appear more than once; the most
// recent row wins.
func (s *SQLiteStore) OrderByNumber(ctx context.Context, number int64) (*models.Order, error) {
	return s.loadOrder(ctx, "o.ZORDERNUMBER = ?", number)
}

// OrderByID loads the full entity graph by internal order id.
func (s *SQLiteStore) OrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return s.loadOrder(ctx, "o.Z_PK = ?", id)
}

// OrdersInRange loads every order paid in [earliest, cutoff).
func (s *SQLiteStore) OrdersInRange(ctx context.Context, earliest, cutoff time.Time) ([]*models.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.Z_PK
			FROM ZPAIDORDER p
			JOIN ZORDER o ON o.ZPAIDORDER = p.Z_PK
			WHERE p.ZPAYDATE >= ? AND p.ZPAYDATE < ?
			ORDER BY p.ZPAYDATE ASC`,
		dates.ToCocoa(earliest), dates.ToCocoa(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query paid orders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan paid order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate paid orders: %w", err)
	}

	orders := make([]*models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.OrderByID(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (s *SQLiteStore) loadOrder(ctx context.Context, where string, arg any) (*models.Order, error) {
	query := orderSelect + " WHERE " + where + " ORDER BY o.Z_PK DESC LIMIT 1"

	var (
		id                int64
		orderUUID         sql.NullString
		orderNumber       sql.NullInt64
		partyAsSplitOrder sql.NullInt64
		splitBy           sql.NullInt64
		payDate           sql.NullFloat64
		billNumber        sql.NullInt64
		takeoutType       sql.NullInt64
		partySize         sql.NullInt64
		splitCount        sql.NullInt64
		tax1, tax2, tax3  sql.NullFloat64
		tax2OnTax1        sql.NullInt64
		outstanding       sql.NullFloat64
		partyName         sql.NullString
		tableName         sql.NullString
		paymentGroup      sql.NullInt64
		loyaltyName       sql.NullString
		loyaltyCredit     sql.NullFloat64
		loyaltyPoints     sql.NullFloat64
		waiterName        sql.NullString
		waiterUUID        sql.NullString
		customTakeout     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&id, &orderUUID, &orderNumber, &partyAsSplitOrder, &splitBy,
		&payDate, &billNumber, &takeoutType, &partySize, &splitCount,
		&tax1, &tax2, &tax3, &tax2OnTax1,
		&outstanding, &partyName, &tableName, &paymentGroup,
		&loyaltyName, &loyaltyCredit, &loyaltyPoints,
		&waiterName, &waiterUUID, &customTakeout,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %v: %w", arg, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %v: %w", arg, err)
	}

	o := &models.Order{
		ID:                 id,
		UUID:               orderUUID.String,
		OrderNumber:        orderNumber.Int64,
		BillNumber:         i64Ptr(billNumber),
		TableName:          strPtr(tableName),
		PartyName:          strPtr(partyName),
		PartySize:          i64Ptr(partySize),
		Type:               models.OrderTypeFromColumn(i64Ptr(takeoutType)),
		CustomTakeoutType:  strPtr(customTakeout),
		WaiterUUID:         strPtr(waiterUUID),
		WaiterName:         strPtr(waiterName),
		PaidAt:             s.timePtr(payDate),
		TaxRate1:           tax1.Float64,
		TaxRate2:           tax2.Float64,
		TaxRate3:           tax3.Float64,
		StackTax2OnTax1:    tax2OnTax1.Int64 != 0,
		OutstandingBalance: f64Ptr(outstanding),
		SplitCount:         splitCount.Int64,
		SplitBy:            splitBy.Int64,
	}
	if loyaltyName.Valid {
		o.Loyalty = &models.LoyaltyBalances{
			AccountName:   loyaltyName.String,
			CreditBalance: loyaltyCredit.Float64,
			PointBalance:  loyaltyPoints.Float64,
		}
	}

	// The split factor for items on this bill: normally the paid order's
	// own split count, but when this order is a split pulled from a linked
	// table order, the linked order's configured split-by value.
	divisor := o.SplitCount
	if partyAsSplitOrder.Valid && partyAsSplitOrder.Int64 != 0 {
		linked, err := s.orderSplitBy(ctx, partyAsSplitOrder.Int64)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if linked > 0 {
			divisor = linked
		}
	}

	o.Items, err = s.loadItems(ctx, o.ID, divisor)
	if err != nil {
		return nil, err
	}
	if paymentGroup.Valid {
		o.Payments, err = s.loadPayments(ctx, paymentGroup.Int64)
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

// orderSplitBy returns the configured split-by value on the order row with
// the given primary key.
func (s *SQLiteStore) orderSplitBy(ctx context.Context, orderPK int64) (int64, error) {
	var splitBy sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT ZI_SPLITBY FROM ZORDER WHERE Z_PK = ?", orderPK,
	).Scan(&splitBy)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("linked order %d: %w", orderPK, storage.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load linked order %d: %w", orderPK, err)
	}
	return splitBy.Int64, nil
}
