// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "github.com/toeirei/sqldefaults/internal/logging"

var debugEnabled bool

// SetDebug enables or disables statement-level debug logging. Disabled by default.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

func dbLogf(format string, v ...any) {
	if debugEnabled {
		logging.Infof("db: "+format, v...)
		return
	}
	logging.Debugf("db: "+format, v...)
}
