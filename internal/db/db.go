// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/toeirei/sqldefaults/internal/crypto/seal"
	"github.com/toeirei/sqldefaults/internal/logging"
	"github.com/toeirei/sqldefaults/internal/security"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Supported backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// Row is one result row keyed by column name.
type Row = map[string]interface{}

// Values maps column names to the values written by Insert and Update.
type Values map[string]interface{}

// Options configures Open.
type Options struct {
	// Driver is one of DriverSQLite (default), DriverPostgres, DriverMySQL.
	Driver string
	// DSN is the file path (or sqlite URI) for sqlite, the connection string otherwise.
	DSN string
	// Secret is bound before every statement. An empty secret makes every
	// statement fail with ErrNoSecret.
	Secret security.Secret
	// KDF overrides the key derivation cost. Zero means seal.DefaultParams.
	KDF seal.Params
}

// DB is the access layer for one database: a single serialized connection,
// generic CRUD and DDL helpers, transactions and sealed columns.
//
// All methods are safe for concurrent use; they are executed one at a time.
type DB struct {
	mu     sync.Mutex
	driver string
	sqlDB  *sql.DB
	bun    *bun.DB
	tx     *bun.Tx
	closed bool

	secret security.Secret
	kdf    seal.Params
	keys   *seal.Keys
	sealer *seal.Sealer

	// sealed maps table -> column set; sealedCols is the union used when a
	// raw query gives no table context.
	sealed     map[string]map[string]struct{}
	sealedCols map[string]struct{}
}

// Open connects to the database described by opts, limits the pool to one
// connection and prepares the keyring table.
func Open(opts Options) (*DB, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	driverName, err := driverNameFor(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, fmt.Errorf("db: empty DSN for %s", driver)
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection per store: statements are totally ordered and sqlite
	// pragmas stay bound to the only connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if driver == DriverSQLite {
		if err := applyPragmas(sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	kdf := opts.KDF
	if kdf == (seal.Params{}) {
		kdf = seal.DefaultParams
	}
	d := &DB{
		driver:     driver,
		sqlDB:      sqlDB,
		bun:        createBunDB(sqlDB, driver),
		secret:     security.FromBytes(opts.Secret),
		kdf:        kdf,
		sealed:     make(map[string]map[string]struct{}),
		sealedCols: make(map[string]struct{}),
	}
	if err := d.ensureKeyring(context.Background()); err != nil {
		_ = d.bun.Close()
		return nil, err
	}
	dbLogf("opened %s in %s", driver, time.Since(start))
	return d, nil
}

func driverNameFor(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite", nil
	case DriverPostgres:
		// The pgx stdlib registers driver name "pgx".
		return "pgx", nil
	case DriverMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("db: unsupported database type %q", driver)
	}
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and driver.
func createBunDB(sqlDB *sql.DB, driver string) *bun.DB {
	switch driver {
	case DriverPostgres:
		return bun.NewDB(sqlDB, pgdialect.New())
	case DriverMySQL:
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// applyPragmas sets the sqlite connection options the store relies on.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Driver reports the backend this DB was opened with.
func (d *DB) Driver() string { return d.driver }

// Close rolls back an open transaction, wipes key material and closes the
// connection. Close is idempotent.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.tx != nil {
		_ = d.tx.Rollback()
		d.tx = nil
	}
	d.keys.Zero()
	d.keys, d.sealer = nil, nil
	d.secret.Zero()
	return d.bun.Close()
}

// idb returns the open transaction if any, the pool otherwise. Callers hold mu.
func (d *DB) idb() bun.IDB {
	if d.tx != nil {
		return d.tx
	}
	return d.bun
}

// run executes fn under the connection lock after binding the key. Errors
// are mapped, logged and wrapped with op and table.
func (d *DB) run(op, table string, fn func(ctx context.Context, idb bun.IDB) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.fail(op, table, ErrClosed)
	}
	ctx := context.Background()
	idb := d.idb()
	if err := d.bindKey(ctx, idb); err != nil {
		return d.fail(op, table, err)
	}
	if err := fn(ctx, idb); err != nil {
		return d.fail(op, table, MapDBError(err))
	}
	return nil
}

func (d *DB) fail(op, table string, err error) error {
	if table == "" {
		table = "-"
	}
	// A duplicate on insert is the normal first half of an upsert.
	if isDuplicate(err) {
		dbLogf("%s %s: %v", op, table, err)
	} else {
		logging.L.Warn("statement failed", "op", op, "table", table, "err", err)
	}
	return fmt.Errorf("%s %s: %w", op, table, err)
}
