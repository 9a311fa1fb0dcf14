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

func (s *SQLiteStore) loadPayments(ctx context.Context, paymentGroupPK int64) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.ZUUID, p.ZI_INDEX, p.ZI_TYPE, p.ZI_AMOUNT, p.ZTIP,
				p.ZI_CHANGE, p.ZBALANCE, p.ZI_REFUNDABLEAMOUNT,
				p.ZCARDTYPE, p.ZAUTH, p.ZORIGINALPAYMENTUUID,
				p.ZACCOUNT, p.ZCUSTOMER, p.ZCREATEDATE
			FROM ZPAYMENT p
			WHERE p.ZPAYMENTGROUP = ?
			ORDER BY p.ZI_INDEX ASC`,
		paymentGroupPK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for group %d: %w", paymentGroupPK, err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		var (
			payUUID      sql.NullString
			index        sql.NullInt64
			typeCode     sql.NullInt64
			amount       sql.NullFloat64
			tip          sql.NullFloat64
			change       sql.NullFloat64
			balance      sql.NullFloat64
			refundable   sql.NullFloat64
			cardType     sql.NullString
			authNumber   sql.NullString
			originalUUID sql.NullString
			accountID    sql.NullInt64
			customerID   sql.NullInt64
			createdAt    sql.NullFloat64
		)
		if err := rows.Scan(&payUUID, &index, &typeCode, &amount, &tip,
			&change, &balance, &refundable, &cardType, &authNumber,
			&originalUUID, &accountID, &customerID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		p := &models.Payment{
			UUID:                payUUID.String,
			Number:              int(index.Int64) + 1,
			Type:                models.PaymentType(typeCode.Int64),
			Amount:              amount.Float64,
			Tip:                 tip.Float64,
			Change:              change.Float64,
			Balance:             balance.Float64,
			RefundableAmount:    refundable.Float64,
			CardType:            strPtr(cardType),
			AuthNumber:          strPtr(authNumber),
			OriginalPaymentUUID: strPtr(originalUUID),
			CustomerAccountID:   i64Ptr(accountID),
			CustomerID:          i64Ptr(customerID),
			PaidAt:              s.timePtr(createdAt),
		}

		// Loyalty payments are tied to the activity log through the
		// authorization number; no match means the payment was not
		// loyalty-backed.
		if authNumber.Valid && authNumber.String != "" {
			activity, err := s.loyaltyByTransactionID(ctx, authNumber.String)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			p.Loyalty = activity
		}
		if p.Type == models.PaymentCustomerAccount && accountID.Valid {
			account, err := s.CustomerAccount(ctx, accountID.Int64)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			p.Account = account
		}

		payments = append(payments, p)
	}
	return payments, rows.Err()
}

const loyaltySelect = `SELECT l.ZTRANSACTIONID, l.ZACTIVITYTYPE, l.ZAMOUNT,
		l.ZUSERNAME, l.ZUSERID, l.ZCREATEDAT, w.ZDISPLAYNAME
	FROM ZLOYALTYACTIVITYLOG l
	LEFT JOIN ZWAITER w ON w.ZUUID = l.ZWAITERUUID`

func (s *SQLiteStore) loyaltyByTransactionID(ctx context.Context, transactionID string) (*models.LoyaltyActivity, error) {
	row := s.db.QueryRowContext(ctx,
		loyaltySelect+" WHERE l.ZTRANSACTIONID = ? LIMIT 1", transactionID)
	activity, err := s.scanLoyalty(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("loyalty transaction %s: %w", transactionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load loyalty transaction %s: %w", transactionID, err)
	}
	return activity, nil
}

// LoyaltyInRange returns loyalty activity logged in [earliest, cutoff).
func (s *SQLiteStore) LoyaltyInRange(ctx context.Context, earliest, cutoff time.Time) ([]*models.LoyaltyActivity, error) {
	rows, err := s.db.QueryContext(ctx,
		loyaltySelect+` WHERE l.ZCREATEDAT >= ? AND l.ZCREATEDAT < ?
			ORDER BY l.ZCREATEDAT ASC`,
		dates.ToCocoa(earliest), dates.ToCocoa(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query loyalty activity: %w", err)
	}
	defer rows.Close()

	var activities []*models.LoyaltyActivity
	for rows.Next() {
		activity, err := s.scanLoyalty(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loyalty activity: %w", err)
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

func (s *SQLiteStore) scanLoyalty(scan func(...any) error) (*models.LoyaltyActivity, error) {
	var (
		transactionID sql.NullString
		activityType  sql.NullInt64
		amount        sql.NullFloat64
		accountNumber sql.NullString
		userID        sql.NullString
		createdAt     sql.NullFloat64
		waiterName    sql.NullString
	)
	if err := scan(&transactionID, &activityType, &amount, &accountNumber,
		&userID, &createdAt, &waiterName); err != nil {
		return nil, err
	}
	return &models.LoyaltyActivity{
		TransactionID: transactionID.String,
		ActivityType:  activityType.Int64,
		Amount:        amount.Float64,
		AccountNumber: accountNumber.String,
		UserID:        strPtr(userID),
		WaiterName:    strPtr(waiterName),
		CreatedAt:     s.timePtr(createdAt),
	}, nil
}

// The customer account table carries a ledger reference in a column whose
// name embeds a schema version number (Z77ACCOUNTS, Z78ACCOUNTS, ...).
const accountsColBaseVersion = 77

// CustomerAccount fetches a customer account by primary key.
func (s *SQLiteStore) CustomerAccount(ctx context.Context, id int64) (*models.CustomerAccount, error) {
	var (
		name    sql.NullString
		balance sql.NullFloat64
		number  sql.NullInt64
		email   sql.NullString
		phone   sql.NullString
		note    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT ZNAME, ZBALANCE, ZNUMBER, ZEMAIL, ZPHONENUMBER, ZNOTE
			FROM ZTBACCOUNT WHERE Z_PK = ?`,
		id,
	).Scan(&name, &balance, &number, &email, &phone, &note)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer account %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load customer account %d: %w", id, err)
	}

	account := &models.CustomerAccount{
		ID:      id,
		Name:    name.String,
		Balance: balance.Float64,
		Number:  i64Ptr(number),
		Email:   strPtr(email),
		Phone:   strPtr(phone),
		Note:    strPtr(note),
	}
	ref, err := s.accountsRef(ctx, id)
	if err != nil {
		return nil, err
	}
	account.LedgerRef = ref
	return account, nil
}

// accountsRef reads the versioned ledger column for the account, probing
// column name versions until one matches and caching the hit.
func (s *SQLiteStore) accountsRef(ctx context.Context, id int64) (*int64, error) {
	if v := s.versions.accountsVersion(); v != 0 {
		return s.accountsRefAt(ctx, v, id)
	}

	var lastErr error
	for v := accountsColBaseVersion; v < accountsColBaseVersion+probeBudget; v++ {
		ref, err := s.accountsRefAt(ctx, v, id)
		if isMissingSchema(err) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		s.versions.setAccountsVersion(v)
		return ref, nil
	}
	return nil, fmt.Errorf("%w: no customer account ledger column between versions %d and %d: %v",
		storage.ErrSchemaNotRecognized, accountsColBaseVersion,
		accountsColBaseVersion+probeBudget-1, lastErr)
}

func (s *SQLiteStore) accountsRefAt(ctx context.Context, version int, id int64) (*int64, error) {
	var ref sql.NullInt64
	query := fmt.Sprintf("SELECT Z%dACCOUNTS FROM ZTBACCOUNT WHERE Z_PK = ?", version)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return i64Ptr(ref), nil
}
