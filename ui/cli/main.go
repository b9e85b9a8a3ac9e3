// Copyright (c) 2026 ToeiRei
// Agekey - age-keygen front-end
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for Agekey using the Cobra
// library. It defines the root command (which launches the TUI), the
// headless generate subcommand, flags, and startup wiring: config loading,
// i18n, and locating the external age-keygen executable.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/toeirei/agekey/buildvars"
	"github.com/toeirei/agekey/internal/config"
	"github.com/toeirei/agekey/internal/i18n"
	"github.com/toeirei/agekey/internal/keygen"
	"github.com/toeirei/agekey/internal/logging"
	"github.com/toeirei/agekey/internal/tui"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var cfgFile string
var debugFlag bool
var showVersionFlag bool

var appConfig config.Config

// configDefaults returns the built-in configuration values. The timeouts are
// seconds; 30/10 are the contract of the external tool invocation.
func configDefaults() map[string]any {
	return map[string]any{
		"language":              "en",
		"debug":                 false,
		"keygen.path":           "",
		"keygen.timeout":        30,
		"keygen.derive_timeout": 10,
	}
}

// setupDefaultServices loads the configuration and initializes i18n and
// logging. It runs as PersistentPreRunE for every command.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := configDefaults()
	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, optionalConfigPath)
	if err != nil {
		return fmt.Errorf(i18n.T("config.load_failed"), err)
	}

	// First run: persist a default config file for the user to edit later.
	if userPath, pathErr := config.UserConfigPath(); pathErr == nil {
		if _, statErr := os.Stat(userPath); os.IsNotExist(statErr) {
			if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
				logging.Warnf("could not write default config file: %v", writeErr)
			}
		}
	}

	// Guard against empty or nonsense values from a hand-edited file.
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}
	if appConfig.Keygen.Timeout <= 0 {
		appConfig.Keygen.Timeout = defaults["keygen.timeout"].(int)
	}
	if appConfig.Keygen.DeriveTimeout <= 0 {
		appConfig.Keygen.DeriveTimeout = defaults["keygen.derive_timeout"].(int)
	}

	i18n.Init(appConfig.Language)
	logging.SetDebug(appConfig.Debug || debugFlag)

	return nil
}

// getConfigPathFromCli returns the config file path when the user explicitly
// set --config, after checking the file exists.
func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
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

// resolveKeygenPath returns the executable to use for this session: the
// configured override if set, otherwise the locator's result. A failure here
// is fatal to the whole application.
func resolveKeygenPath() (string, error) {
	if appConfig.Keygen.Path != "" {
		return appConfig.Keygen.Path, nil
	}
	path, err := keygen.Locate()
	if err != nil {
		if errors.Is(err, keygen.ErrNotFound) {
			return "", errors.New(i18n.T("error.not_found"))
		}
		if errors.Is(err, keygen.ErrPermission) {
			return "", errors.New(i18n.T("error.no_exec_permission", err))
		}
		return "", err
	}
	return path, nil
}

// newRunner builds a single-use Runner with the configured timeouts.
func newRunner(path string) *keygen.Runner {
	r := keygen.NewRunner(path)
	r.RunTimeout = time.Duration(appConfig.Keygen.Timeout) * time.Second
	r.DeriveTimeout = time.Duration(appConfig.Keygen.DeriveTimeout) * time.Second
	return r
}

// Execute runs the CLI entrypoint. The main package calls this function and
// handles process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates and configures a new root cobra command. This function
// is used for the main application as well as fresh instances for isolated
// testing.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agekey",
		Short: "Agekey is a terminal front-end for the age-keygen tool.",
		Long: `Agekey shells out to the external age-keygen executable, shows the
resulting key pair, and offers clipboard and file export. The tool is
located once at startup (working directory, the directory of this binary,
then PATH); without it the program refuses to run.

Running without a subcommand launches the interactive TUI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Println(compositeVersion())
				os.Exit(0)
			}
			return setupDefaultServices(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveKeygenPath()
			if err != nil {
				return err
			}
			r := newRunner(path)
			tui.Run(path, r.RunTimeout, r.DeriveTimeout)
			return nil
		},
	}

	cmd.Version = compositeVersion()

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().String("language", "en", `UI language ("en", "de")`)
	cmd.PersistentFlags().String("keygen.path", "", "Path to the age-keygen executable (skips the search)")
	cmd.PersistentFlags().Int("keygen.timeout", 30, "Timeout in seconds for the key generation run")
	cmd.PersistentFlags().Int("keygen.derive_timeout", 10, "Timeout in seconds for public key derivation")

	cmd.AddCommand(newGenerateCmd(), newVersionCmd())

	return cmd
}

// newVersionCmd returns a lightweight `version` subcommand so users and CI
// can run `agekey version`.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", v)
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", d)
			}
		},
	}
}

// compositeVersion formats version, commit and build date into one line.
func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime. This helper is separated to make unit testing straightforward.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
		}
	}
	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}
