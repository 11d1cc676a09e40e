// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package defaults

import "errors"

var (
	// ErrEncode wraps structured codec failures on writes.
	ErrEncode = errors.New("defaults: encode failed")
	// ErrDecode wraps structured codec failures on reads.
	ErrDecode = errors.New("defaults: decode failed")
	// ErrStorage wraps failures of the underlying database.
	ErrStorage = errors.New("defaults: storage failed")
	// ErrTypeMismatch is reported when a stored primitive does not fit the
	// type of the key used to read it.
	ErrTypeMismatch = errors.New("defaults: stored value has a different type")
	// ErrUnavailable is reported by every operation of a degraded store.
	ErrUnavailable = errors.New("defaults: store unavailable")
)
