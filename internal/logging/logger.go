// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging holds the process logger shared by the storage layers and
// the CLI.
package logging

import (
	"fmt"
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Callers should prefer the helpers below;
// structured key/value logging goes through L directly.
var L = newLogger(os.Stderr)

func newLogger(w io.Writer) *clog.Logger {
	l := clog.NewWithOptions(w, clog.Options{Prefix: "sqldefaults"})
	l.SetLevel(clog.InfoLevel)
	return l
}

// SetOutput redirects the package logger to w, keeping the current level.
func SetOutput(w io.Writer) {
	lvl := L.GetLevel()
	L = newLogger(w)
	L.SetLevel(lvl)
}

// SetDebug switches debug-level output on or off. Off by default.
func SetDebug(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
		return
	}
	L.SetLevel(clog.InfoLevel)
}

// DebugEnabled reports whether debug-level messages are emitted.
func DebugEnabled() bool {
	return L.GetLevel() <= clog.DebugLevel
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...interface{}) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...interface{}) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...interface{}) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...interface{}) {
	L.Error(fmt.Sprintf(format, v...))
}
