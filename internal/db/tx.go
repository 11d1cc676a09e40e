// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
)

// Begin opens a transaction. Until Commit or Rollback every statement of d
// runs inside it.
func (d *DB) Begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.fail("begin", "", ErrClosed)
	}
	if d.tx != nil {
		return d.fail("begin", "", ErrInTransaction)
	}
	ctx := context.Background()
	if err := d.bindKey(ctx, d.bun); err != nil {
		return d.fail("begin", "", err)
	}
	tx, err := d.bun.BeginTx(ctx, nil)
	if err != nil {
		return d.fail("begin", "", err)
	}
	d.tx = &tx
	dbLogf("transaction started")
	return nil
}

// Commit commits the open transaction.
func (d *DB) Commit() error {
	return d.endTx("commit", func() error { return d.tx.Commit() })
}

// Rollback discards the open transaction.
func (d *DB) Rollback() error {
	return d.endTx("rollback", func() error { return d.tx.Rollback() })
}

func (d *DB) endTx(op string, fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tx == nil {
		return d.fail(op, "", ErrNoTransaction)
	}
	err := fn()
	d.tx = nil
	if err != nil {
		return d.fail(op, "", fmt.Errorf("%s transaction: %w", op, err))
	}
	dbLogf("transaction %s", op)
	return nil
}

// InTransaction reports whether a transaction is open.
func (d *DB) InTransaction() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tx != nil
}
