// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/sqldefaults/defaults"
	"github.com/toeirei/sqldefaults/internal/config"
)

// withStore opens the configured store around fn.
func (a *app) withStore(cmd *cobra.Command, fn func(*defaults.Store) error) error {
	s, err := a.openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s)
}

func newGetCmd(a *app) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under a key",
		Long: `Prints the value stored under key, read as --type.
Primitive types print their zero value for a key that was never set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkType(typ); err != nil {
				return err
			}
			return a.withStore(cmd, func(s *defaults.Store) error {
				out, err := getValue(s, typ, args[0])
				if errors.Is(err, errNoValue) {
					return a.failure(fmt.Sprintf("no %s value for %q", typ, args[0]))
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "string", "value type: string, int, bool, float, time, json")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value under a key",
		Long: `Stores value under key. The value is parsed as --type; "time" takes
RFC 3339 or "now", "json" takes any JSON document.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkType(typ); err != nil {
				return err
			}
			return a.withStore(cmd, func(s *defaults.Store) error {
				ok, err := setValue(s, typ, args[0], args[1])
				if err != nil {
					return err
				}
				if !ok {
					return a.failure(fmt.Sprintf("could not store %q", args[0]))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "string", "value type: string, int, bool, float, time, json")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <key>...",
		Aliases: []string{"remove"},
		Short:   "Remove keys",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(s *defaults.Store) error {
				for _, k := range args {
					defaults.Remove(s, defaults.NewKey[any](k))
				}
				if a.lastErr != nil {
					return a.failure("remove failed")
				}
				return nil
			})
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every key of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(s *defaults.Store) error {
				if !s.RemoveAll() {
					return a.failure("clear failed")
				}
				return nil
			})
		},
	}
}

func newKeysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(s *defaults.Store) error {
				keys := s.Keys()
				if keys == nil && a.lastErr != nil {
					return a.failure("list keys failed")
				}
				for _, k := range keys {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), k); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newMaintainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: "Run database maintenance (VACUUM/OPTIMIZE) on the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(s *defaults.Store) error {
				if err := s.Maintain(); err != nil {
					return fmt.Errorf("maintenance failed: %w", err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Maintenance completed successfully")
				return err
			})
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	var system bool
	write := &cobra.Command{
		Use:   "write",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteConfigFile(&a.cfg, system)
			if err != nil {
				return fmt.Errorf("could not write config file: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	write.Flags().BoolVar(&system, "system", false, "write the system-wide file instead of the user file")
	cmd.AddCommand(write)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "version: %s\n", b.Version)
			_, _ = fmt.Fprintf(out, "commit: %s\n", b.Commit)
			if b.Date != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", b.Date)
			}
			return nil
		},
	}
}
