// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the CLI configuration from defaults, a yaml file,
// SQLDEFAULTS_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appName    = "sqldefaults"
	envPrefix  = "SQLDEFAULTS"
	configType = "yaml"
)

// Config is the configuration of the sqldefaults command.
type Config struct {
	// App is the application identity that names the data directory.
	App string `mapstructure:"app" yaml:"app,omitempty"`
	// Dir overrides the data directory.
	Dir string `mapstructure:"dir" yaml:"dir,omitempty"`
	// Suite selects a suite store. Empty means the application store.
	Suite string `mapstructure:"suite" yaml:"suite,omitempty"`
	// Secret unlocks a suite store.
	Secret string `mapstructure:"secret" yaml:"secret,omitempty"`
	// Codec is the structured codec name.
	Codec    string   `mapstructure:"codec" yaml:"codec,omitempty"`
	Database Database `mapstructure:"database" yaml:"database"`
	Debug    bool     `mapstructure:"debug" yaml:"debug,omitempty"`
}

// Database selects the backend.
type Database struct {
	Type string `mapstructure:"type" yaml:"type"`
	Dsn  string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

// Defaults are the values used when nothing else sets a key.
func Defaults() map[string]any {
	return map[string]any{
		"app":           "",
		"dir":           "",
		"suite":         "",
		"secret":        "",
		"codec":         "json",
		"database.type": "sqlite",
		"database.dsn":  "",
		"debug":         false,
	}
}

// flagKeys maps flag names that differ from their configuration key.
var flagKeys = map[string]string{
	"db-type": "database.type",
	"db-dsn":  "database.dsn",
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "SQLDefaults")
		default: // Linux, macOS, etc.
			configDir = "/etc/" + appName
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, appName)
	}

	return filepath.Join(configDir, appName+"."+configType), nil
}

// LoadConfig resolves T from defaults, the first sqldefaults.yaml found (or
// the explicit file), the environment and the flags of cmd.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(appName)
	v.SetConfigType(configType)
	explicit := configFile != nil && *configFile != ""
	if explicit {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless the caller named one.
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteConfigFile writes c as yaml to the user (or system) configuration
// file and returns its path.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file may hold a suite secret.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
