// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package kvtable stores opaque values under string keys in one fixed
// two-column table on top of the db access layer.
package kvtable

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toeirei/sqldefaults/internal/crypto/seal"
	"github.com/toeirei/sqldefaults/internal/db"
	"github.com/toeirei/sqldefaults/internal/security"
)

// TableName is the only table the store writes to.
const TableName = "UserDefaults"

// FileExt is appended to the identity to form the database file name.
const FileExt = ".sqlite"

const (
	colKey   = "key"
	colValue = "value"
)

// ErrNotFound is returned by Load when no row exists for the key.
var ErrNotFound = errors.New("kvtable: key not found")

// schemas holds the column list per backend. Keys are VARCHAR(191) on mysql
// so the primary key fits the utf8mb4 index limit.
var schemas = map[string]string{
	db.DriverSQLite:   "(key TEXT PRIMARY KEY, value BLOB)",
	db.DriverPostgres: "(key TEXT PRIMARY KEY, value BYTEA)",
	db.DriverMySQL:    "(`key` VARCHAR(191) PRIMARY KEY, value LONGBLOB)",
}

// Config describes where a table lives.
type Config struct {
	// Dir is the data directory for sqlite files. Created with 0700 if missing.
	Dir string
	// Identity names the file: <Dir>/<Identity>.sqlite.
	Identity string
	Secret   security.Secret
	// Driver selects a server backend. Empty means sqlite.
	Driver string
	// DSN is used as is for server backends, ignoring Dir and Identity.
	DSN string
	KDF seal.Params
}

// Table is a key-value table bound to one database.
type Table struct {
	db   *db.DB
	path string
	own  bool
}

// Open opens (creating if needed) the database described by cfg and makes
// sure the table exists.
func Open(cfg Config) (*Table, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = db.DriverSQLite
	}
	dsn := cfg.DSN
	if driver == db.DriverSQLite && dsn == "" {
		p, err := FilePath(cfg.Dir, cfg.Identity)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return nil, fmt.Errorf("kvtable: create data dir: %w", err)
		}
		dsn = p
	}
	d, err := db.Open(db.Options{Driver: driver, DSN: dsn, Secret: cfg.Secret, KDF: cfg.KDF})
	if err != nil {
		return nil, err
	}
	t, err := New(d)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	t.path, t.own = db.RedactDSN(driver, dsn), true
	return t, nil
}

// FilePath returns <dir>/<identity>.sqlite.
func FilePath(dir, identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", errors.New("kvtable: empty identity")
	}
	if strings.ContainsAny(identity, `/\`) || identity == "." || identity == ".." {
		return "", fmt.Errorf("kvtable: invalid identity %q", identity)
	}
	if dir == "" {
		return "", errors.New("kvtable: empty data directory")
	}
	return filepath.Join(dir, identity+FileExt), nil
}

// New uses an already open database. The caller keeps ownership of d:
// Close on the returned table does not close it.
func New(d *db.DB) (*Table, error) {
	schema, ok := schemas[d.Driver()]
	if !ok {
		return nil, fmt.Errorf("kvtable: no schema for driver %q", d.Driver())
	}
	d.SealColumn(TableName, colValue)
	if err := d.CreateTable(TableName, schema); err != nil {
		return nil, err
	}
	return &Table{db: d}, nil
}

// Save stores value under key. It tries an insert first and falls back to
// an update when the insert fails, so an existing row is overwritten.
func (t *Table) Save(key string, value any) error {
	insErr := t.db.Insert(TableName, db.Values{colKey: key, colValue: value})
	if insErr == nil {
		return nil
	}
	n, err := t.db.Update(TableName, db.Values{colValue: value}, t.keyWhere(), key)
	if err != nil {
		return err
	}
	if n == 0 {
		return insErr
	}
	return nil
}

// Load returns the value stored under key or ErrNotFound.
func (t *Table) Load(key string) (any, error) {
	rows, err := t.db.Select(TableName, db.Query{
		Columns: []string{t.quoted(colValue)},
		Where:   t.keyWhere(),
		Args:    []interface{}{key},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0][colValue], nil
}

// Remove deletes key. Removing a missing key is not an error.
func (t *Table) Remove(key string) error {
	_, err := t.db.Delete(TableName, t.keyWhere(), key)
	return err
}

// RemoveAll deletes every row.
func (t *Table) RemoveAll() error {
	_, err := t.db.Delete(TableName, "")
	return err
}

// Keys lists the stored keys in ascending order.
func (t *Table) Keys() ([]string, error) {
	rows, err := t.db.Select(TableName, db.Query{
		Columns: []string{t.quoted(colKey)},
		OrderBy: []string{t.quoted(colKey)},
		Limit:   db.NoLimit,
	})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(rows))
	for _, r := range rows {
		switch k := r[colKey].(type) {
		case string:
			keys = append(keys, k)
		case []byte:
			keys = append(keys, string(k))
		}
	}
	return keys, nil
}

// Count returns the number of stored keys.
func (t *Table) Count() (int, error) {
	rows, err := t.db.Select(TableName, db.Query{Columns: []string{"COUNT(*) AS n"}})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	switch n := rows[0]["n"].(type) {
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case int:
		return n, nil
	case []byte:
		var c int
		_, err := fmt.Sscan(string(n), &c)
		return c, err
	default:
		return 0, fmt.Errorf("kvtable: unexpected count type %T", n)
	}
}

// DB exposes the underlying access layer.
func (t *Table) DB() *db.DB { return t.db }

// Path is the file the table was opened with, or the server DSN with its
// password masked. Empty for tables built with New.
func (t *Table) Path() string { return t.path }

// Close closes the database if Open created it.
func (t *Table) Close() error {
	if !t.own {
		return nil
	}
	return t.db.Close()
}

func (t *Table) keyWhere() string { return t.quoted(colKey) + " = ?" }

// quoted quotes a column name that is a reserved word on mysql.
func (t *Table) quoted(col string) string {
	if t.db.Driver() == db.DriverMySQL {
		return "`" + col + "`"
	}
	return col
}
