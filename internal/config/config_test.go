// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	cfg "github.com/toeirei/sqldefaults/internal/config"
)

// isolate keeps the user's real configuration out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Chdir(tmp)
	return tmp
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("suite", "", "")
	cmd.Flags().String("db-type", "", "")
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)
	got, err := cfg.LoadConfig[cfg.Config](newCmd(), cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Codec != "json" || got.Database.Type != "sqlite" || got.Suite != "" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := isolate(t)
	yaml := "suite: work\ncodec: yaml\ndatabase:\n  type: postgres\n  dsn: postgresql://user@/db\n"
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](newCmd(), cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Database.Type != "postgres" || got.Database.Dsn != "postgresql://user@/db" {
		t.Fatalf("unexpected database: %+v", got.Database)
	}
	if got.Suite != "work" || got.Codec != "yaml" {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestLoadConfig_MissingExplicitFileFails(t *testing.T) {
	tmp := isolate(t)
	file := filepath.Join(tmp, "missing.yaml")
	if _, err := cfg.LoadConfig[cfg.Config](newCmd(), cfg.Defaults(), &file); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	tmp := isolate(t)
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte("suite: from-file\ncodec: yaml\ndatabase:\n  type: mysql\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Setenv("SQLDEFAULTS_CODEC", "cbor")
	t.Setenv("SQLDEFAULTS_SUITE", "from-env")

	cmd := newCmd()
	if err := cmd.Flags().Set("suite", "from-flag"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := cmd.Flags().Set("db-type", "postgres"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Codec != "cbor" {
		t.Fatalf("env should override file, codec = %q", got.Codec)
	}
	if got.Suite != "from-flag" {
		t.Fatalf("flag should override env, suite = %q", got.Suite)
	}
	if got.Database.Type != "postgres" {
		t.Fatalf("--db-type should map to database.type, got %q", got.Database.Type)
	}
}

func TestLoadConfig_FindsUserConfig(t *testing.T) {
	tmp := isolate(t)
	dir := filepath.Join(tmp, "sqldefaults")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sqldefaults.yaml"), []byte("app: found\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.App != "found" {
		t.Fatalf("expected app from user config, got %q", got.App)
	}
}

func TestWriteConfigFile_CreatesFile(t *testing.T) {
	isolate(t)

	c := cfg.Config{Suite: "work", Codec: "json", Database: cfg.Database{Type: "sqlite"}}
	path, err := cfg.WriteConfigFile(&c, false)
	if err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}
	want, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
	if !strings.Contains(string(data), "suite: work") {
		t.Fatalf("unexpected file content:\n%s", data)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", fi.Mode().Perm())
	}
}
