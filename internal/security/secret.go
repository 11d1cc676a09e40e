// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security keeps store secrets in redacting wrappers so that they do
// not leak through logs, error messages or configuration dumps.
package security

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
)

const redacted = "[SECRET]"

// Secret holds the passphrase a store was opened with.
type Secret []byte

// FromString copies in into a new Secret.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromBytes copies in into a new Secret.
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}

// Empty reports whether no secret material is present.
func (s Secret) Empty() bool { return len(s) == 0 }

// Equal compares two secrets in constant time.
func (s Secret) Equal(other Secret) bool {
	return subtle.ConstantTimeCompare(s, other) == 1
}

// Bytes returns a copy of the underlying bytes. Callers zero the copy when done.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// Use runs fn with the underlying bytes (no copy).
func (s Secret) Use(fn func([]byte) error) error {
	return fn([]byte(s))
}

// Zero overwrites the secret in place.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return redacted }

// Format implements fmt.Formatter so every verb prints the placeholder.
func (s Secret) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, redacted)
}

// MarshalJSON redacts secrets in JSON output.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// MarshalText redacts secrets for text encoders (yaml, env dumps).
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }
