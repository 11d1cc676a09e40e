// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db is the database access layer used by the table store.
//
// A DB wraps one *sql.DB capped at a single connection in a Bun DB with the
// dialect of the chosen backend (sqlite via modernc.org/sqlite, postgres via
// pgx, mysql via go-sql-driver). Every operation takes the DB mutex, so all
// statements against one database are totally ordered. While a transaction
// is open every statement is routed through it.
//
// Encryption
//   - The embedded engine has no page cipher. Instead the file carries a
//     keyring table (sqldefaults_keyring) with a random KDF salt and a key
//     verifier. Before every statement the layer checks the bound secret
//     against that row and fails with ErrNoSecret or ErrKeyMismatch.
//   - Columns registered with SealColumn are CBOR encoded and sealed with
//     XChaCha20-Poly1305 on write and opened on read, so the value column
//     never holds plain text.
//
// Helpers
//   - Select, Insert, Update and Delete take identifiers and a WHERE clause
//     with ? placeholders. Bun formats arguments per dialect.
//   - ExecuteQuery and ExecuteUpdate run raw SQL.
//
// Testing notes
//   - Use a per-test shared-cache memory DSN such as
//     "file:TestName?mode=memory&cache=shared" with a cheap seal.Params.
package db
