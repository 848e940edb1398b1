// Package config provides configuration management for the chanavg CLI.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CHANAVG_ prefix)
//  3. Config file (.chanavg.yaml)
package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gogpu/chanavg"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
	LogFormatAuto = "auto"
)

// DefaultQuality is the default JPEG output quality.
const DefaultQuality = 90

// filterPrefix is the viper key prefix of the filter block.
const filterPrefix = "filter."

// FilterFlagNames lists the command flags that bind into the filter block.
var FilterFlagNames = []string{
	"include-red", "include-green", "include-blue",
	"exclude-red", "exclude-green", "exclude-blue",
	"excluded", "opacity",
}

// Config represents the global configuration of the chanavg CLI.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json, auto (text on a terminal, JSON otherwise).
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Workers is the number of filter goroutines; 0 uses GOMAXPROCS.
	Workers int `mapstructure:"workers" json:"workers"`

	// GPU enables the wgpu compute accelerator.
	GPU bool `mapstructure:"gpu" json:"gpu"`

	// Quality is the JPEG output quality (1-100).
	Quality int `mapstructure:"quality" json:"quality"`

	// Filter holds the default filter settings for apply and watch.
	Filter Filter `mapstructure:"filter" json:"filter"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Filter is the filter block of the configuration file.
type Filter struct {
	IncludeRed   bool    `mapstructure:"include-red" json:"includeRed"`
	IncludeGreen bool    `mapstructure:"include-green" json:"includeGreen"`
	IncludeBlue  bool    `mapstructure:"include-blue" json:"includeBlue"`
	ExcludeRed   bool    `mapstructure:"exclude-red" json:"excludeRed"`
	ExcludeGreen bool    `mapstructure:"exclude-green" json:"excludeGreen"`
	ExcludeBlue  bool    `mapstructure:"exclude-blue" json:"excludeBlue"`
	Excluded     string  `mapstructure:"excluded" json:"excluded"`
	Opacity      float64 `mapstructure:"opacity" json:"opacity"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatAuto,
		Quality:   DefaultQuality,
		Filter: Filter{
			IncludeRed:   true,
			IncludeGreen: true,
			IncludeBlue:  true,
			Excluded:     chanavg.ExcludedUntouched.String(),
			Opacity:      1,
		},
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON, LogFormatAuto:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json, auto", c.LogFormat)
	}

	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d: must not be negative", c.Workers)
	}

	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("invalid quality %d: must be between 1 and 100", c.Quality)
	}

	if _, err := c.Filter.Config(0); err != nil {
		return err
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Config converts the filter block into a filter config for n pixels.
func (f Filter) Config(n int) (chanavg.FilterConfig, error) {
	mode, err := chanavg.ParseExcludedMode(f.Excluded)
	if err != nil {
		return chanavg.FilterConfig{}, fmt.Errorf("invalid filter.excluded: %w", err)
	}

	if math.IsNaN(f.Opacity) || f.Opacity < 0 || f.Opacity > 1 {
		return chanavg.FilterConfig{}, fmt.Errorf("invalid filter.opacity %v: must be between 0 and 1", f.Opacity)
	}

	return chanavg.FilterConfig{
		Length:       n,
		IncludeRed:   f.IncludeRed,
		IncludeGreen: f.IncludeGreen,
		IncludeBlue:  f.IncludeBlue,
		ExcludeRed:   f.ExcludeRed,
		ExcludeGreen: f.ExcludeGreen,
		ExcludeBlue:  f.ExcludeBlue,
		Excluded:     mode,
	}, nil
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Store the resolved config file path so watch mode can follow it.
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("gpu", d.GPU)
	v.SetDefault("quality", d.Quality)

	// Nested keys need defaults for AutomaticEnv to reach them.
	v.SetDefault("filter.include-red", d.Filter.IncludeRed)
	v.SetDefault("filter.include-green", d.Filter.IncludeGreen)
	v.SetDefault("filter.include-blue", d.Filter.IncludeBlue)
	v.SetDefault("filter.exclude-red", d.Filter.ExcludeRed)
	v.SetDefault("filter.exclude-green", d.Filter.ExcludeGreen)
	v.SetDefault("filter.exclude-blue", d.Filter.ExcludeBlue)
	v.SetDefault("filter.excluded", d.Filter.Excluded)
	v.SetDefault("filter.opacity", d.Filter.Opacity)
}

// configureEnv sets up environment variable support.
// CHANAVG_FILTER_EXCLUDE_RED maps to filter.exclude-red.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("CHANAVG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	// Auto-discovery mode.
	v.SetConfigName(".chanavg")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "chanavg"))
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file found → perfectly fine in auto-discovery.
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		// Found a file but it was malformed.
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags binds the command's own flags and walks up to the root binding
// all persistent flags. Filter flags bind into the filter block.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	var bindErr error
	bind := func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" {
			return
		}
		key := f.Name
		if isFilterFlag(f.Name) {
			key = filterPrefix + f.Name
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("binding flag %q: %w", f.Name, err)
		}
	}

	cmd.Flags().VisitAll(bind)

	for c := cmd; c != nil; c = c.Parent() {
		c.PersistentFlags().VisitAll(bind)
	}

	return bindErr
}

func isFilterFlag(name string) bool {
	for _, n := range FilterFlagNames {
		if n == name {
			return true
		}
	}

	return false
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
