// Package config loads the CLI settings from a YAML file, PARTEDIT_*
// environment variables and command line flags, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/ostafen/partedit/pkg/partition"
	"github.com/spf13/viper"
)

const (
	KeyLogLevel     = "log_level"
	KeyGrain        = "grain"
	KeyDefaultLabel = "default_label"
	KeyNoColor      = "no_color"
)

// Config holds the settings shared by all commands.
type Config struct {
	LogLevel     string `mapstructure:"log_level"`
	Grain        string `mapstructure:"grain"`
	DefaultLabel string `mapstructure:"default_label"`
	NoColor      bool   `mapstructure:"no_color"`
}

// Load reads the configuration into v. An explicit path must exist; without
// one, partedit.yaml is looked up in the usual places and is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("partedit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/partedit")
		v.AddConfigPath("/etc/partedit")
	}

	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyGrain, "1MiB")
	v.SetDefault(KeyDefaultLabel, "gpt")
	v.SetDefault(KeyNoColor, false)

	v.SetEnvPrefix("PARTEDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if _, err := cfg.GrainBytes(); err != nil {
		return nil, err
	}
	if _, err := cfg.Label(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level returns the configured log level.
func (c *Config) Level() logger.Level {
	return logger.ParseLevel(c.LogLevel)
}

// GrainBytes parses the alignment setting, which accepts sizes such as
// "4096", "1MiB" or "2 MB".
func (c *Config) GrainBytes() (uint64, error) {
	n, err := humanize.ParseBytes(c.Grain)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", KeyGrain, c.Grain, err)
	}
	if n == 0 || n&(n-1) != 0 {
		return 0, fmt.Errorf("invalid %s %q: not a power of two", KeyGrain, c.Grain)
	}
	return n, nil
}

// Label returns the table kind created when none is given explicitly.
func (c *Config) Label() (partition.TableKind, error) {
	k, err := partition.ParseTableKind(c.DefaultLabel)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", KeyDefaultLabel, err)
	}
	return k, nil
}
