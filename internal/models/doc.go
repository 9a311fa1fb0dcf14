// Package models defines read-only snapshots of the POS database's business
// entities.
//
// # Entities
//
//   - Order: a customer transaction, with its line items and payments
//   - OrderItem: one line item, with quantity, modifiers and discounts
//   - Modifier: an addition to a line item; modifiers nest into trees
//   - Discount: a price reduction or void applied to a line item
//   - Payment: one payment against an order's payment group
//   - MenuItem, SalesCategory, Waiter: reference data
//   - LoyaltyActivity, CustomerAccount: payment enrichment
//
// # Design Principles
//
// 1. **Snapshots**: every entity is a point-in-time read of the backing
// database and is never mutated after construction. The POS application
// owns the database; this module only reads it.
//
// 2. **Back-references, not ownership**: a Modifier holds non-owning
// pointers to its containing OrderItem and parent Modifier so that
// inherited attributes (sales category) can be resolved without duplicating
// storage. Parents are set once, at load time.
//
// 3. **Explicit summaries**: Summary() on each entity returns a nested map
// with an allow-listed field set, used by the JSON and CSV writers. Fields
// not in the list are never serialized.
//
// All money fields are currency amounts in dollars. Cent-exact arithmetic
// happens in the calculator package, not here.
package models
