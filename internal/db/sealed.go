// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"fmt"
	"strings"

	"github.com/toeirei/sqldefaults/internal/codec"
)

// SealColumn registers column of table as sealed. Values written to it by
// Insert and Update are CBOR encoded and sealed; values read back by Select
// and ExecuteQuery are opened and decoded. Sealed columns cannot be used in
// WHERE clauses since every write uses a fresh nonce.
func (d *DB) SealColumn(table, column string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := strings.ToLower(table)
	c := strings.ToLower(column)
	if d.sealed[t] == nil {
		d.sealed[t] = make(map[string]struct{})
	}
	d.sealed[t][c] = struct{}{}
	d.sealedCols[c] = struct{}{}
}

// ad binds an envelope to its column so values cannot be moved between columns.
func ad(column string) []byte { return []byte(strings.ToLower(column)) }

func (d *DB) sealedIn(table string) map[string]struct{} {
	return d.sealed[strings.ToLower(table)]
}

// sealValues returns a copy of vals with the sealed columns replaced by envelopes.
func (d *DB) sealValues(table string, vals Values) (map[string]interface{}, error) {
	cols := d.sealedIn(table)
	out := make(map[string]interface{}, len(vals))
	for k, v := range vals {
		if _, ok := cols[strings.ToLower(k)]; !ok || v == nil {
			out[k] = v
			continue
		}
		pt, err := codec.EncodeScalar(v)
		if err != nil {
			return nil, fmt.Errorf("seal column %s: %w", k, err)
		}
		env, err := d.sealer.Seal(pt, ad(k))
		if err != nil {
			return nil, fmt.Errorf("seal column %s: %w", k, err)
		}
		out[k] = env
	}
	return out, nil
}

// openRows opens sealed columns in place. cols nil means the union of all
// sealed columns.
func (d *DB) openRows(rows []Row, cols map[string]struct{}) error {
	if cols == nil {
		cols = d.sealedCols
	}
	if len(cols) == 0 {
		return nil
	}
	for _, row := range rows {
		for k, v := range row {
			if _, ok := cols[strings.ToLower(k)]; !ok || v == nil {
				continue
			}
			env, ok := asBytes(v)
			if !ok {
				return fmt.Errorf("open column %s: unexpected %T", k, v)
			}
			pt, err := d.sealer.Open(env, ad(k))
			if err != nil {
				return fmt.Errorf("open column %s: %w", k, err)
			}
			val, err := codec.DecodeScalar(pt)
			if err != nil {
				return fmt.Errorf("open column %s: %w", k, err)
			}
			row[k] = val
		}
	}
	return nil
}

func asBytes(v interface{}) ([]byte, bool) {
	switch b := v.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	default:
		return nil, false
	}
}
