// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"math"
	"strings"

	"github.com/uptrace/bun"
)

// NoLimit disables the LIMIT clause of Select.
const NoLimit = -1

// defaultWhere matches every row and is understood by all backends.
const defaultWhere = "1 = 1"

// Query describes one Select.
type Query struct {
	// Columns are column names or expressions. Empty selects *.
	Columns []string
	// Where is a condition with ? placeholders. Empty matches every row.
	Where string
	Args  []interface{}
	// OrderBy holds ORDER BY expressions such as "k DESC".
	OrderBy []string
	// Limit 0 returns at most one row; NoLimit returns every row.
	Limit  int
	Offset int
}

func whereOrAll(where string) string {
	if strings.TrimSpace(where) == "" {
		return defaultWhere
	}
	return where
}

// ExecuteQuery runs a raw read and returns every row. Sealed columns are
// opened by column name.
func (d *DB) ExecuteQuery(query string, args ...interface{}) ([]Row, error) {
	var rows []Row
	err := d.run("query", "", func(ctx context.Context, idb bun.IDB) error {
		if err := QueryRawInto(ctx, idb, &rows, query, args...); err != nil {
			return err
		}
		return d.openRows(rows, nil)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExecuteUpdate runs raw DDL or DML and returns the number of rows affected.
// Arguments are bound as given; nothing is sealed.
func (d *DB) ExecuteUpdate(query string, args ...interface{}) (int64, error) {
	var n int64
	err := d.run("exec", "", func(ctx context.Context, idb bun.IDB) error {
		res, err := ExecRaw(ctx, idb, query, args...)
		if err != nil {
			return err
		}
		n = rowsAffected(res)
		return nil
	})
	return n, err
}

// CreateTable issues CREATE TABLE IF NOT EXISTS name schema, where schema is
// the parenthesized column list.
func (d *DB) CreateTable(name, schema string) error {
	return d.run("create", name, func(ctx context.Context, idb bun.IDB) error {
		_, err := ExecRaw(ctx, idb, "CREATE TABLE IF NOT EXISTS ? "+schema, bun.Ident(name))
		return err
	})
}

// DropTable drops name if it exists.
func (d *DB) DropTable(name string) error {
	return d.run("drop", name, func(ctx context.Context, idb bun.IDB) error {
		_, err := ExecRaw(ctx, idb, "DROP TABLE IF EXISTS ?", bun.Ident(name))
		return err
	})
}

// TruncateTable deletes every row of name. DELETE is used instead of
// TRUNCATE so the statement also works inside sqlite transactions.
func (d *DB) TruncateTable(name string) error {
	return d.run("truncate", name, func(ctx context.Context, idb bun.IDB) error {
		_, err := ExecRaw(ctx, idb, "DELETE FROM ?", bun.Ident(name))
		return err
	})
}

// Select runs one parameterized SELECT against table.
func (d *DB) Select(table string, q Query) ([]Row, error) {
	var rows []Row
	err := d.run("select", table, func(ctx context.Context, idb bun.IDB) error {
		sq := idb.NewSelect().TableExpr("?", bun.Ident(table))
		if len(q.Columns) == 0 {
			sq = sq.ColumnExpr("*")
		}
		for _, c := range q.Columns {
			sq = sq.ColumnExpr(c)
		}
		sq = sq.Where(whereOrAll(q.Where), q.Args...)
		for _, o := range q.OrderBy {
			sq = sq.OrderExpr(o)
		}
		sq = d.applyLimit(sq, q.Limit, q.Offset)
		if err := sq.Scan(ctx, &rows); err != nil {
			return err
		}
		return d.openRows(rows, d.sealedIn(table))
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *DB) applyLimit(sq *bun.SelectQuery, limit, offset int) *bun.SelectQuery {
	switch {
	case limit == 0:
		sq = sq.Limit(1)
	case limit > 0:
		sq = sq.Limit(limit)
	case offset > 0:
		// OFFSET needs a LIMIT on sqlite and mysql.
		switch d.driver {
		case DriverSQLite:
			sq = sq.Limit(-1)
		case DriverMySQL:
			sq = sq.Limit(math.MaxInt)
		}
	}
	if offset > 0 {
		sq = sq.Offset(offset)
	}
	return sq
}

// Insert writes one row into table.
func (d *DB) Insert(table string, vals Values) error {
	return d.run("insert", table, func(ctx context.Context, idb bun.IDB) error {
		m, err := d.sealValues(table, vals)
		if err != nil {
			return err
		}
		_, err = idb.NewInsert().Model(&m).TableExpr("?", bun.Ident(table)).Exec(ctx)
		return err
	})
}

// Update sets vals on the rows of table matching where (every row when where
// is empty) and returns the number of rows changed.
func (d *DB) Update(table string, vals Values, where string, args ...interface{}) (int64, error) {
	var n int64
	err := d.run("update", table, func(ctx context.Context, idb bun.IDB) error {
		m, err := d.sealValues(table, vals)
		if err != nil {
			return err
		}
		res, err := idb.NewUpdate().Model(&m).TableExpr("?", bun.Ident(table)).
			Where(whereOrAll(where), args...).Exec(ctx)
		if err != nil {
			return err
		}
		n = rowsAffected(res)
		return nil
	})
	return n, err
}

// Delete removes the rows of table matching where (every row when where is
// empty) and returns the number of rows removed.
func (d *DB) Delete(table, where string, args ...interface{}) (int64, error) {
	var n int64
	err := d.run("delete", table, func(ctx context.Context, idb bun.IDB) error {
		res, err := idb.NewDelete().TableExpr("?", bun.Ident(table)).
			Where(whereOrAll(where), args...).Exec(ctx)
		if err != nil {
			return err
		}
		n = rowsAffected(res)
		return nil
	})
	return n, err
}
