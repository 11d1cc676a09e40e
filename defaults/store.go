// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package defaults

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toeirei/sqldefaults/internal/codec"
	"github.com/toeirei/sqldefaults/internal/crypto/seal"
	"github.com/toeirei/sqldefaults/internal/kvtable"
	"github.com/toeirei/sqldefaults/internal/logging"
	"github.com/toeirei/sqldefaults/internal/security"
)

// kdfParams is the key derivation cost for every store. Tests lower it.
var kdfParams = seal.DefaultParams

// Store is one isolated key-value file. All methods are safe for concurrent use.
type Store struct {
	suite   string
	table   *kvtable.Table
	codec   codec.Structured
	onError func(error)
	err     error
}

// New opens the store for suite, creating its file if needed. An empty suite
// selects the application identity, which is the file the shared store uses.
func New(secret, suite string, opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	c, err := codec.Lookup(o.codec)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("defaults: empty secret")
	}
	identity := suite
	if identity == "" {
		identity = AppID()
	}
	dir := o.dir
	if dir == "" && o.dsn == "" {
		if dir, err = DataDir(); err != nil {
			return nil, err
		}
	}
	t, err := kvtable.Open(kvtable.Config{
		Dir:      dir,
		Identity: identity,
		Secret:   security.FromString(secret),
		Driver:   o.driver,
		DSN:      o.dsn,
		KDF:      kdfParams,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	logging.Debugf("opened store %q at %s", identity, t.Path())
	return &Store{suite: suite, table: t, codec: c, onError: o.onError}, nil
}

// degraded returns a store whose every operation is a no-op.
func degraded(cause error, onError func(error)) *Store {
	return &Store{err: cause, codec: codec.JSON, onError: onError}
}

// DataDir is $XDG_DATA_HOME/<app-id>, or ~/.local/share/<app-id> when the
// variable is unset.
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("defaults: locate data dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, AppID()), nil
}

// Suite is the suite name the store was opened with. Empty for the
// application store.
func (s *Store) Suite() string { return s.suite }

// Err reports why a degraded store could not be opened.
func (s *Store) Err() error { return s.err }

// Path is the database file behind the store, or the server DSN with its
// password masked.
func (s *Store) Path() string {
	if s.table == nil {
		return ""
	}
	return s.table.Path()
}

// Close releases the database. Further operations degrade.
func (s *Store) Close() error {
	if s.table == nil {
		return nil
	}
	return s.table.Close()
}

// RemoveAll deletes every key and reports whether it succeeded.
func (s *Store) RemoveAll() bool {
	if !s.ready() {
		return false
	}
	if err := s.table.RemoveAll(); err != nil {
		s.report(fmt.Errorf("%w: remove all: %w", ErrStorage, err))
		return false
	}
	return true
}

// Keys lists the stored key names in ascending order. Nil on failure.
func (s *Store) Keys() []string {
	if !s.ready() {
		return nil
	}
	keys, err := s.table.Keys()
	if err != nil {
		s.report(fmt.Errorf("%w: keys: %w", ErrStorage, err))
		return nil
	}
	return keys
}

// Count returns the number of stored keys, or -1 on failure.
func (s *Store) Count() int {
	if !s.ready() {
		return -1
	}
	n, err := s.table.Count()
	if err != nil {
		s.report(fmt.Errorf("%w: count: %w", ErrStorage, err))
		return -1
	}
	return n
}

// Maintain compacts and checks the database.
func (s *Store) Maintain() error {
	if !s.ready() {
		return fmt.Errorf("%w: %w", ErrUnavailable, s.err)
	}
	if err := s.table.DB().Maintain(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (s *Store) ready() bool {
	if s == nil {
		return false
	}
	if s.table == nil {
		s.report(fmt.Errorf("%w: %w", ErrUnavailable, s.err))
		return false
	}
	return true
}

// report hands err to the error handler. Codec errors are logged here;
// storage errors were already logged by the database layer.
func (s *Store) report(err error) {
	if errors.Is(err, ErrEncode) || errors.Is(err, ErrDecode) || errors.Is(err, ErrTypeMismatch) {
		logging.Debugf("%v", err)
	}
	if s.onError != nil {
		s.onError(err)
	}
}
