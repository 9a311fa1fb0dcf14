// Package sqlite reads the POS application's embedded database through a
// long-lived read-only handle, implementing the storage.Store interface.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/tillview/tillview/internal/dates"
	"github.com/tillview/tillview/internal/storage"
)

// Page cache size passed to sqlite, in KiB.
const cacheSizeKiB = 10 * 1024

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store against a POS database file. The
// file is opened in read-only mode; the POS application remains the sole
// writer.
type SQLiteStore struct {
	db  *sql.DB
	loc *time.Location

	// versions caches schema version numbers discovered by probing.
	// Probing is expensive and a version is stable for the lifetime of a
	// database file, so each is resolved at most once per store.
	versions schemaVersions
}

type schemaVersions struct {
	mu            sync.Mutex
	orderItemJoin int // version embedded in the order-item join table name
	accountsCol   int // version embedded in the customer-account ledger column
}

func (v *schemaVersions) joinVersion() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.orderItemJoin
}

func (v *schemaVersions) setJoinVersion(n int) {
	v.mu.Lock()
	v.orderItemJoin = n
	v.mu.Unlock()
}

func (v *schemaVersions) accountsVersion() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.accountsCol
}

func (v *schemaVersions) setAccountsVersion(n int) {
	v.mu.Lock()
	v.accountsCol = n
	v.mu.Unlock()
}

// New opens the database file read-only. Times read from the database are
// localized to loc (nil means the system local zone). The file must already
// exist; this store never creates or mutates it.
func New(dbPath string, loc *time.Location) (*SQLiteStore, error) {
	if loc == nil {
		loc = time.Local
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database file: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA cache_size = -%d", cacheSizeKiB)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set cache size: %w", err)
	}

	slog.Debug("opened POS database", "path", dbPath, "timezone", loc.String())
	return &SQLiteStore{db: db, loc: loc}, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isMissingSchema reports whether err is sqlite complaining about a table
// or column that does not exist, which is how a wrong version guess fails.
func isMissingSchema(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column")
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func i64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func f64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

// timePtr converts a nullable Cocoa-epoch column to a localized time.
func (s *SQLiteStore) timePtr(v sql.NullFloat64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := dates.FromCocoa(v.Float64, s.loc)
	return &t
}
