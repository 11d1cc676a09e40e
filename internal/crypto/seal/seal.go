// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package seal derives per-file keys from a store secret and seals column
// values with XChaCha20-Poly1305.
//
// Envelope layout (version 1):
//
//	version (1) | flags (1) | nonce (24) | ciphertext
//
// The version and flags bytes are authenticated together with the caller's
// associated data. Flag bit 0 marks a zstd-compressed plaintext.
package seal

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/toeirei/sqldefaults/internal/security"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the length of every derived key.
	KeySize = chacha20poly1305.KeySize
	// SaltSize is the length of the per-file KDF salt.
	SaltSize = 16

	envelopeVersion = 1
	headerSize      = 2
	flagZstd        = 1 << 0

	infoValueKey = "sqldefaults/value"
	infoCheckKey = "sqldefaults/keycheck"
	verifierText = "sqldefaults keyring v1"
)

var (
	// ErrEmptySecret is returned when keys are derived from an empty secret.
	ErrEmptySecret = errors.New("seal: empty secret")
	// ErrMalformed is returned for envelopes that cannot be parsed.
	ErrMalformed = errors.New("seal: malformed envelope")
	// ErrAuth is returned when the ciphertext does not authenticate, which
	// means the wrong key or a modified value.
	ErrAuth = errors.New("seal: message authentication failed")
	// ErrTooLarge is returned by Seal for plaintexts above MaxPlaintextSize.
	ErrTooLarge = errors.New("seal: plaintext too large")
)

// Params tunes the argon2id derivation.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams follows the RFC 9106 second recommended option.
var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Threads: 4}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("seal: generate salt: %w", err)
	}
	return salt, nil
}

// Keys is the key material derived for one database file.
type Keys struct {
	salt  []byte
	value []byte
	check []byte
}

// Derive stretches secret with argon2id over salt and expands the result
// into a value-sealing key and a key-check key.
func Derive(secret security.Secret, salt []byte, p Params) (*Keys, error) {
	if secret.Empty() {
		return nil, ErrEmptySecret
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("seal: salt must be %d bytes, got %d", SaltSize, len(salt))
	}
	var master []byte
	_ = secret.Use(func(b []byte) error {
		master = argon2.IDKey(b, salt, p.Time, p.Memory, p.Threads, KeySize)
		return nil
	})
	defer zero(master)

	k := &Keys{salt: append([]byte(nil), salt...)}
	var err error
	if k.value, err = expand(master, salt, infoValueKey); err != nil {
		return nil, err
	}
	if k.check, err = expand(master, salt, infoCheckKey); err != nil {
		return nil, err
	}
	return k, nil
}

func expand(master, salt []byte, info string) ([]byte, error) {
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, salt, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("seal: expand %s: %w", info, err)
	}
	return out, nil
}

// Salt returns a copy of the salt the keys were derived with.
func (k *Keys) Salt() []byte { return append([]byte(nil), k.salt...) }

// Verifier is the value stored next to the salt so a later open can tell a
// wrong secret apart from a corrupted row.
func (k *Keys) Verifier() []byte {
	mac := hmac.New(sha256.New, k.check)
	mac.Write([]byte(verifierText))
	return mac.Sum(nil)
}

// Verify compares v against the expected verifier in constant time.
func (k *Keys) Verify(v []byte) bool {
	return hmac.Equal(v, k.Verifier())
}

// Zero wipes the derived keys.
func (k *Keys) Zero() {
	if k == nil {
		return
	}
	zero(k.value)
	zero(k.check)
}

// Sealer seals and opens envelopes with the value key.
type Sealer struct {
	aead cipher.AEAD
}

// Sealer builds an AEAD over the value key.
func (k *Keys) Sealer() (*Sealer, error) {
	aead, err := chacha20poly1305.NewX(k.value)
	if err != nil {
		return nil, fmt.Errorf("seal: init aead: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext. ad is authenticated but not stored; the same ad
// must be passed to Open.
func (s *Sealer) Seal(plaintext, ad []byte) ([]byte, error) {
	if len(plaintext) > MaxPlaintextSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(plaintext))
	}
	var flags byte
	if packed, ok := compress(plaintext); ok {
		plaintext = packed
		flags |= flagZstd
	}

	ns := s.aead.NonceSize()
	out := make([]byte, headerSize+ns, headerSize+ns+len(plaintext)+s.aead.Overhead())
	out[0] = envelopeVersion
	out[1] = flags
	if _, err := io.ReadFull(rand.Reader, out[headerSize:]); err != nil {
		return nil, fmt.Errorf("seal: generate nonce: %w", err)
	}
	nonce := out[headerSize:]
	return s.aead.Seal(out, nonce, plaintext, associated(out[:headerSize], ad)), nil
}

// Open authenticates and decrypts an envelope produced by Seal.
func (s *Sealer) Open(envelope, ad []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(envelope) < headerSize+ns+s.aead.Overhead() {
		return nil, ErrMalformed
	}
	if envelope[0] != envelopeVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, envelope[0])
	}
	flags := envelope[1]
	nonce := envelope[headerSize : headerSize+ns]
	pt, err := s.aead.Open(nil, nonce, envelope[headerSize+ns:], associated(envelope[:headerSize], ad))
	if err != nil {
		return nil, ErrAuth
	}
	if flags&flagZstd != 0 {
		return decompress(pt)
	}
	return pt, nil
}

func associated(header, ad []byte) []byte {
	out := make([]byte, 0, len(header)+len(ad))
	out = append(out, header...)
	return append(out, ad...)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
