// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package defaults

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/toeirei/sqldefaults/internal/db"
)

func TestSuiteIsolation(t *testing.T) {
	dataDir := resetShared(t)
	shared := Shared()
	if err := shared.Err(); err != nil {
		t.Fatalf("shared store degraded: %v", err)
	}
	suite, err := New("suite-secret", "other")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = suite.Close() }()

	k := NewKey[int]("k")
	Set(suite, k, 5)
	if v, _ := Get(shared, k); v == 5 {
		t.Fatalf("suite write visible in shared store")
	}
	Set(shared, k, 7)
	if v, _ := Get(suite, k); v != 5 {
		t.Fatalf("shared write changed suite store: %d", v)
	}

	dir := filepath.Join(dataDir, "sqldefaults-test")
	for _, name := range []string{"sqldefaults-test.sqlite", "other.sqlite"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s in data dir: %v", name, err)
		}
	}
	if shared.Suite() != "" || suite.Suite() != "other" {
		t.Fatalf("unexpected suites %q %q", shared.Suite(), suite.Suite())
	}
}

func TestSharedIsOnce(t *testing.T) {
	resetShared(t)
	var wg sync.WaitGroup
	stores := make([]*Store, 8)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i] = Shared()
		}(i)
	}
	wg.Wait()
	for _, s := range stores {
		if s != stores[0] {
			t.Fatalf("Shared returned different instances")
		}
	}
}

func TestSharedDegradesWhenUnavailable(t *testing.T) {
	resetShared(t)
	// A regular file where the data directory should be.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	t.Setenv("XDG_DATA_HOME", blocker)

	s := Shared()
	if s.Err() == nil {
		t.Fatalf("expected degraded shared store")
	}
	k := NewKey[int]("k")
	if Set(s, k, 1) {
		t.Fatalf("write on degraded store reported success")
	}
	if v, ok := Get(s, k); v != 0 || !ok {
		t.Fatalf("primitive read on degraded store = %v, %v", v, ok)
	}
	if _, ok := GetArray(s, k); ok {
		t.Fatalf("array read on degraded store reported a value")
	}
	if s.RemoveAll() || s.Keys() != nil || s.Count() != -1 {
		t.Fatalf("degraded store operations should fail softly")
	}
	Remove(s, k)
	if err := s.Maintain(); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Maintain on degraded store = %v", err)
	}
}

func TestConcurrentWritesSameKey(t *testing.T) {
	s := newTestStore(t)
	k := NewKey[string]("contended")
	const writers = 16

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Set(s, k, fmt.Sprintf("value-%02d", i))
			// Reads interleaved with writes must see a whole value or none.
			if v, _ := Get(s, k); v != "" && len(v) != len("value-00") {
				t.Errorf("torn read: %q", v)
			}
		}(i)
	}
	wg.Wait()

	got, ok := Get(s, k)
	if !ok {
		t.Fatalf("no value after concurrent writes")
	}
	valid := false
	for i := 0; i < writers; i++ {
		if got == fmt.Sprintf("value-%02d", i) {
			valid = true
		}
	}
	if !valid {
		t.Fatalf("unexpected value %q", got)
	}
	if n := s.Count(); n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
}

func TestWrongSecretFailsOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := New("right", "locked", WithDir(dir))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	Set(s, NewKey[string]("k"), "v")
	_ = s.Close()

	_, err = New("wrong", "locked", WithDir(dir))
	if !errors.Is(err, ErrStorage) || !errors.Is(err, db.ErrKeyMismatch) {
		t.Fatalf("expected storage error wrapping ErrKeyMismatch, got %v", err)
	}
}

func TestClosedStoreReportsStorageErrors(t *testing.T) {
	rec := &errorRecorder{}
	s := newTestStore(t, WithErrorHandler(rec.handle))
	k := NewKey[int]("k")
	Set(s, k, 1)
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if Set(s, k, 2) {
		t.Fatalf("write after Close reported success")
	}
	if v, ok := Get(s, k); v != 0 || !ok {
		t.Fatalf("read after Close = %v, %v", v, ok)
	}
	errs := rec.all()
	if len(errs) != 2 || !errors.Is(errs[0], ErrStorage) || !errors.Is(errs[0], db.ErrClosed) {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("", "x", WithDir(t.TempDir())); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	if _, err := New("s", "x", WithDir(t.TempDir()), WithCodec("xml")); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
	if _, err := New("s", "x", WithBackend("oracle", "dsn")); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error for unknown backend, got %v", err)
	}
	if _, err := New("s", "../escape", WithDir(t.TempDir())); err == nil {
		t.Fatalf("expected error for suite with a path separator")
	}
}

func TestMaintain(t *testing.T) {
	s := newTestStore(t)
	Set(s, NewKey[string]("k"), "v")
	if err := s.Maintain(); err != nil {
		t.Fatalf("Maintain failed: %v", err)
	}
	if v, _ := Get(s, NewKey[string]("k")); v != "v" {
		t.Fatalf("value lost by maintenance: %q", v)
	}
}

func TestAppID(t *testing.T) {
	if got := AppID(); got != "sqldefaults-test" {
		t.Fatalf("AppID = %q", got)
	}
	SetAppID("")
	defer SetAppID("sqldefaults-test")
	if got := AppID(); got == "" {
		t.Fatalf("AppID fallback is empty")
	}
}

func TestNewSharedOpensApplicationFile(t *testing.T) {
	dir := t.TempDir()
	a, err := NewShared(WithDir(dir))
	if err != nil {
		t.Fatalf("NewShared failed: %v", err)
	}
	Set(a, NewKey[string]("k"), "v")
	_ = a.Close()

	if _, err := os.Stat(filepath.Join(dir, "sqldefaults-test.sqlite")); err != nil {
		t.Fatalf("expected application file: %v", err)
	}
	b, err := NewShared(WithDir(dir))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = b.Close() }()
	if v, _ := Get(b, NewKey[string]("k")); v != "v" {
		t.Fatalf("Get = %q", v)
	}
}
