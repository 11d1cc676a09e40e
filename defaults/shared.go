// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package defaults

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/toeirei/sqldefaults/internal/logging"
)

// sharedSecret protects the application store. It keeps the file unreadable
// to tools that do not know it; suites that need real confidentiality take
// their own secret through New.
const sharedSecret = "sqldefaults/shared-store/v1"

const fallbackAppID = "sqldefaults"

var (
	appMu sync.RWMutex
	appID string

	sharedOnce  sync.Once
	sharedStore *Store
)

// SetAppID sets the application identity used for the data directory and
// for the shared store's file name. It has no effect on a shared store that
// was already opened.
func SetAppID(id string) {
	appMu.Lock()
	defer appMu.Unlock()
	appID = strings.TrimSpace(id)
}

// AppID returns the identity set with SetAppID, or the executable's base
// name without extension.
func AppID() string {
	appMu.RLock()
	id := appID
	appMu.RUnlock()
	if id != "" {
		return id
	}
	exe, err := os.Executable()
	if err != nil {
		return fallbackAppID
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." {
		return fallbackAppID
	}
	return name
}

// NewShared opens a separate handle on the application store, the file
// Shared uses. Most callers want Shared; this exists for tools that need
// options such as WithDir.
func NewShared(opts ...Option) (*Store, error) {
	return New(sharedSecret, "", opts...)
}

// Shared returns the process-wide store, opening it on first use. If opening
// fails the returned store is degraded: writes report false, reads report
// absence and Err returns the cause.
func Shared() *Store {
	sharedOnce.Do(func() {
		s, err := NewShared()
		if err != nil {
			logging.Warnf("shared store unavailable: %v", err)
			s = degraded(err, nil)
		}
		sharedStore = s
	})
	return sharedStore
}
