// Copyright (c) 2026 ToeiRei
// SQLDefaults - typed encrypted key-value store
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/sqldefaults/buildvars"
	"github.com/toeirei/sqldefaults/defaults"
	"github.com/toeirei/sqldefaults/internal/config"
	"github.com/toeirei/sqldefaults/internal/logging"
	"golang.org/x/term"
)

const modulePath = "github.com/toeirei/sqldefaults"

// Terminal access, replaced in tests.
var (
	stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readPassword    = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

// app is the state of one command invocation.
type app struct {
	cfgFile string
	cfg     config.Config
	// lastErr is the most recent error the store swallowed.
	lastErr error
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates and configures a new root cobra command.
// This function is used to create the main application command as well as
// fresh instances for isolated testing.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "sqldefaults",
		Short: "Inspect and edit SQLDefaults stores",
		Long: `sqldefaults reads and writes the typed key-value stores used by
applications embedding the defaults package.

Without --suite the application store is used. Suite stores are
encrypted with their own secret.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.Version = resolveBuildVersion(nil).String()

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file")
	pf.String("dir", "", "data directory (default $XDG_DATA_HOME/<app>)")
	pf.String("suite", "", "suite name; empty selects the application store")
	pf.String("app", "", "application identity (default: executable name)")
	pf.String("secret", "", "secret of the suite store")
	pf.String("codec", "json", `structured codec ("json", "yaml", "cbor")`)
	pf.String("db-type", "sqlite", `database backend ("sqlite", "postgres", "mysql")`)
	pf.String("db-dsn", "", "connection string for postgres or mysql")
	pf.Bool("debug", false, "enable debug logging")

	cmd.AddCommand(
		newGetCmd(a),
		newSetCmd(a),
		newRmCmd(a),
		newClearCmd(a),
		newKeysCmd(a),
		newMaintainCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfgPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}
	a.cfg, err = config.LoadConfig[config.Config](cmd, config.Defaults(), cfgPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	logging.SetDebug(a.cfg.Debug)
	if a.cfg.App != "" {
		defaults.SetAppID(a.cfg.App)
	}
	return nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// openStore opens the store selected by the configuration. Callers close it.
func (a *app) openStore(cmd *cobra.Command) (*defaults.Store, error) {
	opts := []defaults.Option{
		defaults.WithCodec(a.cfg.Codec),
		defaults.WithErrorHandler(func(err error) { a.lastErr = err }),
	}
	if a.cfg.Dir != "" {
		opts = append(opts, defaults.WithDir(a.cfg.Dir))
	}
	if t := a.cfg.Database.Type; t != "" && t != "sqlite" {
		opts = append(opts, defaults.WithBackend(t, a.cfg.Database.Dsn))
	}
	if a.cfg.Suite == "" {
		return defaults.NewShared(opts...)
	}
	secret, err := a.secret(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return defaults.New(secret, a.cfg.Suite, opts...)
}

// secret returns the configured secret, prompting on a terminal.
func (a *app) secret(prompt io.Writer) (string, error) {
	if a.cfg.Secret != "" {
		return a.cfg.Secret, nil
	}
	if !stdinIsTerminal() {
		return "", errors.New("suite store needs a secret: use --secret or SQLDEFAULTS_SECRET")
	}
	_, _ = fmt.Fprintf(prompt, "Secret for suite %q: ", a.cfg.Suite)
	b, err := readPassword()
	_, _ = fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("could not read secret: %w", err)
	}
	s := strings.TrimRight(string(b), "\r\n")
	if s == "" {
		return "", errors.New("empty secret")
	}
	return s, nil
}

// failure turns a swallowed store error into a command error.
func (a *app) failure(what string) error {
	if a.lastErr != nil {
		return fmt.Errorf("%s: %w", what, a.lastErr)
	}
	return errors.New(what)
}

// resolveBuildVersion starts from the linked build identity and fills the
// gaps from the module build info. If `info` is nil, it reads build info
// from the runtime.
func resolveBuildVersion(info *debug.BuildInfo) buildvars.Info {
	b := buildvars.Linked()

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}
	if info != nil {
		if !buildvars.IsDev(info.Main.Version) {
			b.Version = info.Main.Version
		}
		// When embedded as a dependency the module version lives in Deps.
		if buildvars.IsDev(b.Version) {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					b.Version = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					b.Commit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					b.Date = s.Value
				}
			}
		}
	}

	// Fall back to the commit so dev builds are still identifiable.
	if buildvars.IsDev(b.Version) && !buildvars.IsDev(b.Commit) {
		b.Version = b.Commit
	}
	return b
}
