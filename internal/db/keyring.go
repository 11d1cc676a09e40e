// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/toeirei/sqldefaults/internal/crypto/seal"
	"github.com/uptrace/bun"
)

const keyringID = 1

// keyringRow is the single row that records how the file's keys are derived.
type keyringRow struct {
	bun.BaseModel `bun:"table:sqldefaults_keyring"`

	ID       int64  `bun:"id,pk"`
	Salt     []byte `bun:"salt,notnull"`
	Verifier []byte `bun:"verifier,notnull"`
}

func (d *DB) ensureKeyring(ctx context.Context) error {
	if _, err := d.bun.NewCreateTable().Model((*keyringRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create keyring table: %w", err)
	}
	return nil
}

// bindKey checks the configured secret against the keyring row, enrolling a
// fresh file on first use. Derived keys are cached per salt. Callers hold mu.
func (d *DB) bindKey(ctx context.Context, idb bun.IDB) error {
	if d.secret.Empty() {
		return ErrNoSecret
	}
	row := new(keyringRow)
	err := idb.NewSelect().Model(row).Where("id = ?", keyringID).Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return d.enroll(ctx, idb)
	case err != nil:
		return fmt.Errorf("read keyring: %w", err)
	}

	if d.keys == nil || !bytes.Equal(d.keys.Salt(), row.Salt) {
		keys, err := seal.Derive(d.secret, row.Salt, d.kdf)
		if err != nil {
			return err
		}
		if !keys.Verify(row.Verifier) {
			keys.Zero()
			return ErrKeyMismatch
		}
		return d.install(keys)
	}
	if !d.keys.Verify(row.Verifier) {
		return ErrKeyMismatch
	}
	return nil
}

func (d *DB) enroll(ctx context.Context, idb bun.IDB) error {
	salt, err := seal.NewSalt()
	if err != nil {
		return err
	}
	keys, err := seal.Derive(d.secret, salt, d.kdf)
	if err != nil {
		return err
	}
	row := &keyringRow{ID: keyringID, Salt: keys.Salt(), Verifier: keys.Verifier()}
	if _, err := idb.NewInsert().Model(row).Exec(ctx); err != nil {
		keys.Zero()
		// Another connection enrolled the file first; bind against its row.
		if isDuplicate(MapDBError(err)) {
			return d.bindKey(ctx, idb)
		}
		return fmt.Errorf("enroll keyring: %w", err)
	}
	dbLogf("enrolled keyring")
	return d.install(keys)
}

func (d *DB) install(keys *seal.Keys) error {
	sealer, err := keys.Sealer()
	if err != nil {
		keys.Zero()
		return err
	}
	d.keys.Zero()
	d.keys, d.sealer = keys, sealer
	return nil
}
