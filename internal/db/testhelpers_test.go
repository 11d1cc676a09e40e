// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"strings"
	"testing"

	"github.com/toeirei/sqldefaults/internal/crypto/seal"
)

// fastKDF keeps argon2 cheap in tests.
var fastKDF = seal.Params{Time: 1, Memory: 8 * 1024, Threads: 1}

func memDSN(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return "file:" + name + "?mode=memory&cache=shared"
}

// newTestDB opens a fresh in-memory database bound to secret "test-secret".
func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(Options{DSN: memDSN(t), Secret: []byte("test-secret"), KDF: fastKDF})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func mustCreate(t *testing.T, d *DB, name string) {
	t.Helper()
	if err := d.CreateTable(name, "(k TEXT PRIMARY KEY, v TEXT)"); err != nil {
		t.Fatalf("CreateTable(%s) failed: %v", name, err)
	}
}

func mustInsert(t *testing.T, d *DB, table string, k, v string) {
	t.Helper()
	if err := d.Insert(table, Values{"k": k, "v": v}); err != nil {
		t.Fatalf("Insert(%s, %s) failed: %v", table, k, err)
	}
}
