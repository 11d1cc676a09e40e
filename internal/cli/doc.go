// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli implements the sqldefaults command: a thin cobra front end over
// package defaults for inspecting and editing stores from a shell.
//
//	sqldefaults set theme dark
//	sqldefaults --suite work get retries --type int
//	sqldefaults --suite work keys
//
// Configuration is resolved by internal/config. A suite store needs a secret;
// when none is configured and stdin is a terminal it is prompted for.
package cli
