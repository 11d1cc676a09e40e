// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package buildvars

import "testing"

func saveVars(t *testing.T) {
	t.Helper()
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestVersionOrDefault(t *testing.T) {
	saveVars(t)

	Version = ""
	if got := VersionOrDefault("dev"); got != "dev" {
		t.Fatalf("expected default, got %q", got)
	}
	Version = "v1.0.0"
	if got := VersionOrDefault("dev"); got != "v1.0.0" {
		t.Fatalf("expected injected version, got %q", got)
	}
}

func TestLinked(t *testing.T) {
	saveVars(t)

	Version, Commit, Date = "", "", ""
	if got := Linked(); got != (Info{Version: Dev, Commit: Dev}) {
		t.Fatalf("unlinked build = %+v", got)
	}
	Version, Commit, Date = "v1.0.0", "deadbeef", "2026-01-01T00:00:00Z"
	want := Info{Version: "v1.0.0", Commit: "deadbeef", Date: "2026-01-01T00:00:00Z"}
	if got := Linked(); got != want {
		t.Fatalf("Linked = %+v, want %+v", got, want)
	}
}

func TestInfoString(t *testing.T) {
	cases := []struct {
		in   Info
		want string
	}{
		{Info{Version: Dev, Commit: Dev}, "dev"},
		{Info{Version: "v1.0.0", Commit: "deadbeef"}, "v1.0.0 (deadbeef)"},
		{Info{Version: "deadbeef", Commit: "deadbeef"}, "deadbeef"},
		{Info{Version: "v1.0.0", Commit: Dev, Date: "2026-01-01T00:00:00Z"}, "v1.0.0 built: 2026-01-01T00:00:00Z"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Fatalf("%+v.String() = %q, want %q", tc.in, got, tc.want)
		}
	}
}
