// Copyright (c) 2026 ToeiRei
// Agekey - age-keygen front-end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config implements layered configuration for Agekey on top of viper:
// defaults, an optional YAML config file, environment variables (AGEKEY_*)
// and command-line flags, in ascending order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Language string       `mapstructure:"language" yaml:"language"`
	Debug    bool         `mapstructure:"debug" yaml:"debug"`
	Keygen   KeygenConfig `mapstructure:"keygen" yaml:"keygen"`
}

// KeygenConfig configures how the external age-keygen tool is invoked.
type KeygenConfig struct {
	// Path overrides the executable search. Empty means locate at startup.
	Path string `mapstructure:"path" yaml:"path"`
	// Timeout is the primary invocation timeout in seconds.
	Timeout int `mapstructure:"timeout" yaml:"timeout"`
	// DeriveTimeout is the public-key derivation timeout in seconds.
	DeriveTimeout int `mapstructure:"derive_timeout" yaml:"derive_timeout"`
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Agekey")
		default: // Linux, macOS, etc.
			configDir = "/etc/agekey"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "agekey")
	}

	return filepath.Join(configDir, "agekey.yaml"), nil
}

// UserConfigPath returns the per-user config file location, whether or not
// the file exists.
func UserConfigPath() (string, error) {
	return getConfigPath(false)
}

// LoadConfig builds a T from defaults, config file, environment and the
// command's flags. A missing config file is not an error; the result then
// carries defaults, environment and flag values only.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("agekey")
	v.SetConfigType("yaml")

	// An explicit --config path has the highest precedence for file-based
	// configuration.
	if additionalConfigFilePath != nil {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// It's okay if the file is not found, but other errors are fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("agekey")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// WriteConfigFile persists c to the user (or system) config location.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0600)
}
