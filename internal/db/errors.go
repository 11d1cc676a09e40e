// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicate is returned when attempting to insert a record that already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNoSecret is returned for every statement on a DB opened without a secret.
	ErrNoSecret = errors.New("db: no secret bound")
	// ErrKeyMismatch is returned when the secret does not match the keyring of the file.
	ErrKeyMismatch = errors.New("db: secret does not match database")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("db: closed")
	// ErrInTransaction is returned by Begin while a transaction is open.
	ErrInTransaction = errors.New("db: transaction already open")
	// ErrNoTransaction is returned by Commit and Rollback without a transaction.
	ErrNoTransaction = errors.New("db: no open transaction")
)

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors (like ErrDuplicate). The driver
// error stays in the chain. Matching is string based so the mapping does not
// depend on any one driver's error types.
func MapDBError(err error) error {
	if err == nil || errors.Is(err, ErrDuplicate) {
		return err
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

func isDuplicate(err error) bool { return errors.Is(err, ErrDuplicate) }
