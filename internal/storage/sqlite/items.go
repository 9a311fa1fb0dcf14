package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tillview/tillview/internal/models"
	"github.com/tillview/tillview/internal/storage"
)

// The order-item join table name embeds a schema version number that
// increments with POS software releases (Z_52I_ORDERITEMS, Z_53I_ORDERITEMS,
// ...). The order column carries the table's version, the item column the
// next one up. Probing starts at the oldest release this code understands.
const (
	joinTableBaseVersion = 52
	probeBudget          = 100
)

// orderItemIDs resolves the line item primary keys for an order, probing
// join table versions until one matches and caching the hit.
func (s *SQLiteStore) orderItemIDs(ctx context.Context, orderPK int64) ([]int64, error) {
	if v := s.versions.joinVersion(); v != 0 {
		return s.orderItemIDsAt(ctx, v, orderPK)
	}

	var lastErr error
	for v := joinTableBaseVersion; v < joinTableBaseVersion+probeBudget; v++ {
		ids, err := s.orderItemIDsAt(ctx, v, orderPK)
		if isMissingSchema(err) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		s.versions.setJoinVersion(v)
		return ids, nil
	}
	return nil, fmt.Errorf("%w: no order-item join table between versions %d and %d: %v",
		storage.ErrSchemaNotRecognized, joinTableBaseVersion,
		joinTableBaseVersion+probeBudget-1, lastErr)
}

func (s *SQLiteStore) orderItemIDsAt(ctx context.Context, version int, orderPK int64) ([]int64, error) {
	query := fmt.Sprintf(`SELECT j.Z_%dI_ORDERITEMS
			FROM Z_%dI_ORDERITEMS j
			LEFT JOIN ZORDERITEM i ON i.Z_PK = j.Z_%dI_ORDERITEMS
			WHERE j.Z_%dI_ORDERS = ?
			ORDER BY i.ZI_INDEX ASC`,
		version+1, version, version+1, version)

	rows, err := s.db.QueryContext(ctx, query, orderPK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) loadItems(ctx context.Context, orderPK, splitDivisor int64) ([]*models.OrderItem, error) {
	ids, err := s.orderItemIDs(ctx, orderPK)
	if err != nil {
		return nil, err
	}
	items := make([]*models.OrderItem, 0, len(ids))
	for _, id := range ids {
		it, err := s.loadItem(ctx, id, splitDivisor)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *SQLiteStore) loadItem(ctx context.Context, itemPK, splitDivisor int64) (*models.OrderItem, error) {
	var (
		menuItemUUID sql.NullString
		quantity     sql.NullFloat64
		openPrice    sql.NullFloat64
		course       sql.NullInt64
		sent         sql.NullInt64
		sentTime     sql.NullFloat64
		createdAt    sql.NullFloat64
		waiterName   sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT i.ZMENUITEMUUID, i.ZI_QUANTITY, i.ZI_OPENPRICE,
				i.ZI_COURSE, i.ZI_SENT, i.ZSENTTIME, i.ZCREATEDATE,
				w.ZDISPLAYNAME
			FROM ZORDERITEM i
			LEFT JOIN ZWAITER w ON w.ZUUID = i.ZWAITERID
			WHERE i.Z_PK = ?`,
		itemPK,
	).Scan(&menuItemUUID, &quantity, &openPrice, &course, &sent, &sentTime,
		&createdAt, &waiterName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order item %d: %w", itemPK, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order item %d: %w", itemPK, err)
	}

	it := &models.OrderItem{
		ID:           itemPK,
		Quantity:     quantity.Float64,
		OpenPrice:    f64Ptr(openPrice),
		Course:       course.Int64,
		WasSent:      sent.Int64 != 0,
		CreatedAt:    s.timePtr(createdAt),
		WaiterName:   strPtr(waiterName),
		SplitDivisor: splitDivisor,
	}
	if it.WasSent {
		it.SentAt = s.timePtr(sentTime)
	}

	if menuItemUUID.Valid {
		mi, err := s.menuItemByUUID(ctx, menuItemUUID.String)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		it.MenuItem = mi
	}

	if it.Modifiers, err = s.loadModifierTree(ctx, itemPK, it, nil); err != nil {
		return nil, err
	}
	if it.Discounts, err = s.loadDiscounts(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

// loadModifierTree loads the modifiers contained by the order item with
// primary key containerPK. A modifier that was itself a chosen menu item
// carries a reference to its own order item row, whose modifiers become the
// nested children. Exactly one of item/parent is non-nil and becomes the
// back-reference on each loaded modifier.
func (s *SQLiteStore) loadModifierTree(ctx context.Context, containerPK int64, item *models.OrderItem, parent *models.Modifier) ([]*models.Modifier, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.Z_PK, m.ZUUID, m.ZREQUIREDMODIFIER, m.ZMENUITEM,
				m.ZORDERITEM, m.ZI_PRICE, m.ZI_NAME
			FROM ZMODIFIER m
			WHERE m.ZCONTAINERORDERITEM = ?
			ORDER BY m.ZI_INDEX ASC`,
		containerPK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query modifiers for item %d: %w", containerPK, err)
	}
	defer rows.Close()

	type modRow struct {
		pk          int64
		uuid        sql.NullString
		required    sql.NullInt64
		menuItemPK  sql.NullInt64
		orderItemPK sql.NullInt64
		price       sql.NullFloat64
		name        sql.NullString
	}
	var raw []modRow
	for rows.Next() {
		var r modRow
		if err := rows.Scan(&r.pk, &r.uuid, &r.required, &r.menuItemPK,
			&r.orderItemPK, &r.price, &r.name); err != nil {
			return nil, fmt.Errorf("failed to scan modifier: %w", err)
		}
		raw = append(raw, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate modifiers: %w", err)
	}

	mods := make([]*models.Modifier, 0, len(raw))
	for _, r := range raw {
		m := &models.Modifier{
			ID:             r.pk,
			UUID:           r.uuid.String,
			Required:       r.required.Int64 != 0,
			Text:           r.name.String,
			UnitPrice:      r.price.Float64,
			ContainerItem:  item,
			ParentModifier: parent,
		}
		if r.menuItemPK.Valid {
			mi, err := s.menuItemByPK(ctx, r.menuItemPK.Int64)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			m.MenuItem = mi
		}
		if r.orderItemPK.Valid && r.orderItemPK.Int64 != 0 {
			m.Nested, err = s.loadModifierTree(ctx, r.orderItemPK.Int64, nil, m)
			if err != nil {
				return nil, err
			}
		}
		mods = append(mods, m)
	}
	return mods, nil
}

func (s *SQLiteStore) loadDiscounts(ctx context.Context, item *models.OrderItem) ([]*models.Discount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.Z_PK, d.ZUUID, d.ZI_TYPE, d.ZI_AMOUNT, d.ZDISCOUNTDESCRIPTION,
				d.ZTAXABLE, d.ZRETURNSINVENTORY, d.ZVOIDDATE,
				d.ZWAITERUUID, d.ZMANAGERUUID,
				w.ZDISPLAYNAME, mgr.ZDISPLAYNAME
			FROM ZDISCOUNT d
			LEFT JOIN ZWAITER w ON w.ZUUID = d.ZWAITERUUID
			LEFT JOIN ZWAITER mgr ON mgr.ZUUID = d.ZMANAGERUUID
			WHERE d.ZORDERITEM = ?
			ORDER BY d.ZI_INDEX ASC`,
		item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query discounts for item %d: %w", item.ID, err)
	}
	defer rows.Close()

	var discounts []*models.Discount
	for rows.Next() {
		var (
			pk             int64
			uuid           sql.NullString
			typeCode       sql.NullInt64
			amount         sql.NullFloat64
			description    sql.NullString
			taxable        sql.NullInt64
			returnsInv     sql.NullInt64
			voidDate       sql.NullFloat64
			waiterUUID     sql.NullString
			managerUUID    sql.NullString
			waiterName     sql.NullString
			authorizerName sql.NullString
		)
		if err := rows.Scan(&pk, &uuid, &typeCode, &amount, &description,
			&taxable, &returnsInv, &voidDate, &waiterUUID, &managerUUID,
			&waiterName, &authorizerName); err != nil {
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}

		if !typeCode.Valid {
			return nil, &models.IntegrityError{
				Entity: "discount",
				Key:    uuid.String,
				Field:  "type",
				Reason: "null discount type code",
			}
		}
		dtype, err := models.DiscountTypeFromCode(typeCode.Int64)
		if err != nil {
			return nil, err
		}

		discounts = append(discounts, &models.Discount{
			ID:               pk,
			UUID:             uuid.String,
			Type:             dtype,
			Amount:           amount.Float64,
			Description:      description.String,
			Taxable:          taxable.Int64 != 0,
			ReturnsInventory: returnsInv.Int64 != 0,
			AppliedAt:        s.timePtr(voidDate),
			WaiterUUID:       strPtr(waiterUUID),
			WaiterName:       strPtr(waiterName),
			AuthorizerUUID:   strPtr(managerUUID),
			AuthorizerName:   strPtr(authorizerName),
			Item:             item,
		})
	}
	return discounts, rows.Err()
}
