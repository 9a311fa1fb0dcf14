// Package storage defines the contract for resolving business entities
// from the POS application's backing database.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/tillview/tillview/internal/models"
)

var (
	// ErrNotFound indicates a requested entity key does not resolve to a
	// row. Callers treat it as "absent" for optional relations and as
	// fatal for a required root entity.
	ErrNotFound = errors.New("not found")

	// ErrSchemaNotRecognized indicates version probing for the order-item
	// join exhausted its attempt budget. The wrapped error carries the
	// last underlying failure for diagnostics.
	ErrSchemaNotRecognized = errors.New("schema not recognized")
)

// Store resolves entity records from the backing database. Implementations
// hold a single long-lived read-only handle; no method ever writes. The
// backing schema is owned by the POS application and its table names shift
// across POS releases, so implementations must tolerate that drift.
type Store interface {
	// OrderByNumber loads the full entity graph for the order with the
	// given public order number: items, modifier trees, discounts,
	// payments and their loyalty/account enrichment.
	OrderByNumber(ctx context.Context, number int64) (*models.Order, error)

	// OrderByID loads the same graph by internal order id.
	OrderByID(ctx context.Context, id int64) (*models.Order, error)

	// OrdersInRange loads all orders paid in [earliest, cutoff), ordered
	// by paid time.
	OrdersInRange(ctx context.Context, earliest, cutoff time.Time) ([]*models.Order, error)

	// LoyaltyInRange returns loyalty activity logged in [earliest, cutoff).
	LoyaltyInRange(ctx context.Context, earliest, cutoff time.Time) ([]*models.LoyaltyActivity, error)

	// CustomerAccount fetches a customer account by primary key.
	CustomerAccount(ctx context.Context, id int64) (*models.CustomerAccount, error)

	// Waiter fetches a staff member by UUID.
	Waiter(ctx context.Context, uuid string) (*models.Waiter, error)

	// Close releases the database handle.
	Close() error
}
