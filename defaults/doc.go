// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package defaults is a typed, persistent key-value store backed by an
// encrypted database file.
//
//	theme := defaults.NewKey[string]("theme")
//	s := defaults.Shared()
//	defaults.Set(s, theme, "dark")
//	v, _ := defaults.Get(s, theme) // "dark"
//
// Strings, booleans, sized integers, floats and time.Time are stored as
// native values. Everything else, and every array or dictionary, goes
// through a structured codec (indented JSON unless WithCodec says otherwise).
// Dispatch is on the exact type: a named type such as
//
//	type Celsius float64
//
// is structured, so a missing Key[Celsius] reads as (0, false).
//
// Reading a primitive key that was never written yields its zero value and
// true; time.Time and structured keys yield false instead. Failures never
// panic: writes report false, reads report absence, and the optional error
// handler receives the cause.
//
// Keys carry their type only at the call site. Two keys with the same name
// address the same slot whatever their type parameter.
package defaults
