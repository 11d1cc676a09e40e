// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package defaults

import "time"

// Key names a stored value of type T.
type Key[T any] struct {
	name string
}

// NewKey returns the key for name.
func NewKey[T any](name string) Key[T] { return Key[T]{name: name} }

// Name is the stored key.
func (k Key[T]) Name() string { return k.name }

func (k Key[T]) String() string { return k.name }

// kind is the storage path chosen for a type.
type kind int

const (
	kindStructured kind = iota
	kindScalar
	kindTime
)

// kindOf resolves the storage path of T. Only the predeclared types match;
// named types built on them and interface types take the structured path.
func kindOf[T any]() kind {
	var zero T
	switch any(zero).(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return kindScalar
	case time.Time:
		return kindTime
	default:
		return kindStructured
	}
}
