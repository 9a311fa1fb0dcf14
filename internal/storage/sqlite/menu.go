package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tillview/tillview/internal/models"
	"github.com/tillview/tillview/internal/storage"
)

const menuItemSelect = `SELECT m.ZUUID, m.ZNAME, m.ZI_PRICE,
		m.ZI_EXCLUDETAX1, m.ZI_EXCLUDETAX2, m.ZI_EXCLUDETAX3, m.ZTYPE
	FROM ZMENUITEM m`

func (s *SQLiteStore) menuItemByUUID(ctx context.Context, itemUUID string) (*models.MenuItem, error) {
	if err := uuid.Validate(itemUUID); err != nil {
		return nil, &models.IntegrityError{
			Entity: "menu item",
			Key:    itemUUID,
			Field:  "uuid",
			Reason: err.Error(),
		}
	}
	return s.scanMenuItem(ctx, s.db.QueryRowContext(ctx,
		menuItemSelect+" WHERE m.ZUUID = ?", itemUUID), itemUUID)
}

func (s *SQLiteStore) menuItemByPK(ctx context.Context, pk int64) (*models.MenuItem, error) {
	return s.scanMenuItem(ctx, s.db.QueryRowContext(ctx,
		menuItemSelect+" WHERE m.Z_PK = ?", pk), pk)
}

func (s *SQLiteStore) scanMenuItem(ctx context.Context, row *sql.Row, key any) (*models.MenuItem, error) {
	var (
		itemUUID    sql.NullString
		name        sql.NullString
		price       sql.NullFloat64
		ex1, ex2    sql.NullInt64
		ex3         sql.NullInt64
		salesTypeID sql.NullInt64
	)
	err := row.Scan(&itemUUID, &name, &price, &ex1, &ex2, &ex3, &salesTypeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("menu item %v: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load menu item %v: %w", key, err)
	}

	mi := &models.MenuItem{
		UUID:        itemUUID.String,
		Name:        name.String,
		Price:       price.Float64,
		ExcludeTax1: ex1.Int64 != 0,
		ExcludeTax2: ex2.Int64 != 0,
		ExcludeTax3: ex3.Int64 != 0,
	}
	if salesTypeID.Valid {
		cat, err := s.salesCategoryByTypeID(ctx, salesTypeID.Int64)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		mi.SalesCategory = cat
	}
	return mi, nil
}

func (s *SQLiteStore) salesCategoryByTypeID(ctx context.Context, typeID int64) (*models.SalesCategory, error) {
	var (
		catUUID sql.NullString
		name    sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT ZUUID, ZNAME FROM ZITEMTYPE WHERE ZTYPEID = ?", typeID,
	).Scan(&catUUID, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sales category %d: %w", typeID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sales category %d: %w", typeID, err)
	}
	return &models.SalesCategory{
		UUID:   catUUID.String,
		TypeID: typeID,
		Name:   name.String,
	}, nil
}

// Waiter fetches a staff member by UUID.
func (s *SQLiteStore) Waiter(ctx context.Context, waiterUUID string) (*models.Waiter, error) {
	if err := uuid.Validate(waiterUUID); err != nil {
		return nil, &models.IntegrityError{
			Entity: "waiter",
			Key:    waiterUUID,
			Field:  "uuid",
			Reason: err.Error(),
		}
	}

	var displayName, firstName, lastName, email sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT ZDISPLAYNAME, ZFIRSTNAME, ZLASTNAME, ZEMAIL
			FROM ZWAITER WHERE ZUUID = ?`,
		waiterUUID,
	).Scan(&displayName, &firstName, &lastName, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("waiter %s: %w", waiterUUID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load waiter %s: %w", waiterUUID, err)
	}
	return &models.Waiter{
		UUID:        waiterUUID,
		DisplayName: displayName.String,
		FirstName:   firstName.String,
		LastName:    lastName.String,
		Email:       email.String,
	}, nil
}
