// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package defaults

import (
	"os"
	"sync"
	"testing"

	"github.com/toeirei/sqldefaults/internal/crypto/seal"
)

func TestMain(m *testing.M) {
	kdfParams = seal.Params{Time: 1, Memory: 8 * 1024, Threads: 1}
	SetAppID("sqldefaults-test")
	os.Exit(m.Run())
}

// newTestStore opens a suite store in a fresh directory.
func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithDir(t.TempDir())}, opts...)
	s, err := New("test-secret", "suite", opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// resetShared points the data directory at a temp dir and forgets the
// shared store so the next Shared call opens a new one.
func resetShared(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	sharedOnce = sync.Once{}
	sharedStore = nil
	t.Cleanup(func() {
		if sharedStore != nil {
			_ = sharedStore.Close()
		}
		sharedOnce = sync.Once{}
		sharedStore = nil
	})
	return dir
}

// errorRecorder collects errors passed to the store's error handler.
type errorRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *errorRecorder) handle(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *errorRecorder) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}
