// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package defaults

import (
	"errors"
	"fmt"
	"time"

	"github.com/toeirei/sqldefaults/internal/kvtable"
)

// Set stores value under key and reports whether the write happened.
func Set[T any](s *Store, key Key[T], value T) bool {
	if !s.ready() {
		return false
	}
	if kindOf[T]() != kindStructured {
		return s.save(key.name, value)
	}
	return s.saveStructured(key.name, value)
}

// SetArray stores values under key with the structured codec.
func SetArray[T any](s *Store, key Key[T], values []T) bool {
	if !s.ready() {
		return false
	}
	return s.saveStructured(key.name, values)
}

// SetDictionary stores values under key with the structured codec.
func SetDictionary[T any](s *Store, key Key[T], values map[string]T) bool {
	if !s.ready() {
		return false
	}
	return s.saveStructured(key.name, values)
}

// Get returns the value stored under key.
//
// For primitive T a missing key yields the zero value and true. For
// time.Time and structured T it yields false. A failed read counts as a
// missing key; a stored value that does not fit T yields false.
func Get[T any](s *Store, key Key[T]) (T, bool) {
	var zero T
	k := kindOf[T]()
	if !s.ready() {
		return zero, k == kindScalar
	}
	raw, ok := s.load(key.name)
	if !ok {
		return zero, k == kindScalar
	}
	if k == kindStructured {
		var out T
		if !s.decode(key.name, raw, &out) {
			return zero, false
		}
		return out, true
	}
	v, err := fromStored[T](raw)
	if err != nil {
		s.report(fmt.Errorf("%s: %w", key.name, err))
		return zero, false
	}
	return v, true
}

// GetArray returns the array stored under key.
func GetArray[T any](s *Store, key Key[T]) ([]T, bool) {
	if !s.ready() {
		return nil, false
	}
	raw, ok := s.load(key.name)
	if !ok {
		return nil, false
	}
	var out []T
	if !s.decode(key.name, raw, &out) {
		return nil, false
	}
	return out, true
}

// GetDictionary returns the dictionary stored under key.
func GetDictionary[T any](s *Store, key Key[T]) (map[string]T, bool) {
	if !s.ready() {
		return nil, false
	}
	raw, ok := s.load(key.name)
	if !ok {
		return nil, false
	}
	var out map[string]T
	if !s.decode(key.name, raw, &out) {
		return nil, false
	}
	return out, true
}

// Remove deletes key. Failures go to the error handler only.
func Remove[T any](s *Store, key Key[T]) {
	if !s.ready() {
		return
	}
	if err := s.table.Remove(key.name); err != nil {
		s.report(fmt.Errorf("%w: remove %s: %w", ErrStorage, key.name, err))
	}
}

func (s *Store) save(key string, value any) bool {
	if t, ok := value.(time.Time); ok {
		// Drop the monotonic reading; it is not part of the stored instant.
		value = t.Round(0)
	}
	if err := s.table.Save(key, value); err != nil {
		s.report(fmt.Errorf("%w: save %s: %w", ErrStorage, key, err))
		return false
	}
	return true
}

func (s *Store) saveStructured(key string, value any) bool {
	b, err := s.codec.Marshal(value)
	if err != nil {
		s.report(fmt.Errorf("%w: %s (%s): %w", ErrEncode, key, s.codec.Name(), err))
		return false
	}
	return s.save(key, b)
}

func (s *Store) load(key string) (any, bool) {
	v, err := s.table.Load(key)
	if errors.Is(err, kvtable.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.report(fmt.Errorf("%w: load %s: %w", ErrStorage, key, err))
		return nil, false
	}
	return v, true
}

func (s *Store) decode(key string, raw any, out any) bool {
	b, ok := raw.([]byte)
	if !ok {
		s.report(fmt.Errorf("%w: %s: stored %T is not an encoded value", ErrDecode, key, raw))
		return false
	}
	if err := s.codec.Unmarshal(b, out); err != nil {
		s.report(fmt.Errorf("%w: %s (%s): %w", ErrDecode, key, s.codec.Name(), err))
		return false
	}
	return true
}
