// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for sqldefaults.
//
// Usage:
//
//	go run . [flags] <command>
//	./sqldefaults [flags] <command>
//
// See --help for options.
package main

import (
	"os"

	"github.com/toeirei/sqldefaults/internal/cli"
	"github.com/toeirei/sqldefaults/internal/logging"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
