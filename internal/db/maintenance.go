// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Maintain runs engine housekeeping on the open connection. It refuses to
// run inside a transaction because VACUUM cannot.
func (d *DB) Maintain() error {
	d.mu.Lock()
	inTx := d.tx != nil
	d.mu.Unlock()
	if inTx {
		return d.fail("maintain", "", ErrInTransaction)
	}
	return d.run("maintain", "", func(_ context.Context, idb bun.IDB) error {
		// Small timeout for maintenance operations to avoid blocking callers forever.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		start := time.Now()
		var err error
		switch d.driver {
		case DriverSQLite:
			err = maintainSQLite(ctx, idb)
		case DriverPostgres:
			if _, err = ExecRaw(ctx, idb, "VACUUM ANALYZE"); err != nil {
				err = fmt.Errorf("postgres vacuum failed: %w", err)
			}
		case DriverMySQL:
			err = maintainMySQL(ctx, idb)
		}
		if err == nil {
			dbLogf("maintenance on %s took %s", d.driver, time.Since(start))
		}
		return err
	})
}

func maintainSQLite(ctx context.Context, idb bun.IDB) error {
	// PRAGMA optimize may not be supported or useful in some environments
	// (e.g., in-memory databases); treat optimize errors as non-fatal.
	if _, err := ExecRaw(ctx, idb, "PRAGMA optimize"); err != nil {
		dbLogf("sqlite optimize failed (ignored): %v", err)
	}
	if _, err := ExecRaw(ctx, idb, "VACUUM"); err != nil {
		return fmt.Errorf("sqlite vacuum failed: %w", err)
	}
	// WAL checkpoint; ignore errors if not supported.
	_, _ = ExecRaw(ctx, idb, "PRAGMA wal_checkpoint(TRUNCATE)")
	var res []string
	if err := QueryRawInto(ctx, idb, &res, "PRAGMA integrity_check"); err != nil {
		return fmt.Errorf("sqlite integrity_check failed: %w", err)
	}
	if len(res) == 0 || res[0] != "ok" {
		return fmt.Errorf("sqlite integrity_check failed: %v", res)
	}
	return nil
}

func maintainMySQL(ctx context.Context, idb bun.IDB) error {
	var tables []string
	if err := QueryRawInto(ctx, idb, &tables, "SHOW TABLES"); err != nil {
		return fmt.Errorf("mysql show tables failed: %w", err)
	}
	var lastErr error
	for _, table := range tables {
		if _, err := ExecRaw(ctx, idb, "OPTIMIZE TABLE ?", bun.Ident(table)); err != nil {
			// Non-fatal per-table: remember last error and continue
			dbLogf("mysql optimize table %s failed: %v", table, err)
			lastErr = err
		}
	}
	if lastErr != nil {
		return fmt.Errorf("mysql optimize completed with errors: %w", lastErr)
	}
	return nil
}
