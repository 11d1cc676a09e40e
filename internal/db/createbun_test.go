// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func TestCreateBunDB_VariousDialects(t *testing.T) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	cases := map[string]string{
		DriverSQLite:   "sqlite",
		DriverPostgres: "pg",
		DriverMySQL:    "mysql",
		"unknown":      "sqlite",
	}
	for driver, want := range cases {
		b := createBunDB(sqlDB, driver)
		if b == nil {
			t.Fatalf("createBunDB returned nil for dialect %s", driver)
		}
		if got := b.Dialect().Name().String(); got != want {
			t.Fatalf("dialect for %s: got %q want %q", driver, got, want)
		}
	}
}

func TestDriverNameFor(t *testing.T) {
	cases := map[string]string{DriverSQLite: "sqlite", DriverPostgres: "pgx", DriverMySQL: "mysql"}
	for driver, want := range cases {
		got, err := driverNameFor(driver)
		if err != nil || got != want {
			t.Fatalf("driverNameFor(%s) = %q, %v; want %q", driver, got, err, want)
		}
	}
	if _, err := driverNameFor("oracle"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestOpen_SQLOpenFailure(t *testing.T) {
	orig := sqlOpenFunc
	defer func() { sqlOpenFunc = orig }()
	boom := errors.New("boom")
	sqlOpenFunc = func(string, string) (*sql.DB, error) { return nil, boom }

	_, err := Open(Options{DSN: "ignored", Secret: []byte("s")})
	if !errors.Is(err, boom) {
		t.Fatalf("expected open error to wrap driver error, got %v", err)
	}
}

func TestOpen_EmptyDSN(t *testing.T) {
	if _, err := Open(Options{Driver: DriverSQLite}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
