// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars holds the build identity of the sqldefaults binary.
// Release builds set it through the linker:
//
//	go build -ldflags "\
//	  -X github.com/toeirei/sqldefaults/buildvars.Version=v1.0.0 \
//	  -X github.com/toeirei/sqldefaults/buildvars.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/toeirei/sqldefaults/buildvars.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Local builds leave them empty.
package buildvars

// Dev names an unreleased build.
const Dev = "dev"

var (
	Version string
	Commit  string
	// Date is RFC 3339.
	Date string
)

// VersionOrDefault returns Version if set, otherwise def.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}

// Info is a resolved build identity.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Linked returns what the linker injected, with Dev for a missing version
// or commit.
func Linked() Info {
	i := Info{Version: VersionOrDefault(Dev), Commit: Commit, Date: Date}
	if i.Commit == "" {
		i.Commit = Dev
	}
	return i
}

// IsDev reports whether v is a placeholder rather than a release version.
func IsDev(v string) bool {
	return v == "" || v == Dev || v == "(devel)"
}

// String renders "version (commit) built: date", leaving out unknown parts.
func (i Info) String() string {
	s := i.Version
	if !IsDev(i.Commit) && i.Commit != i.Version {
		s += " (" + i.Commit + ")"
	}
	if i.Date != "" {
		s += " built: " + i.Date
	}
	return s
}
