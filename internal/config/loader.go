package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader for an explicit config file. Unlike the
// directory search, a missing file is an error.
func NewFileLoader(path string) Loader {
	return &loader{
		configFile: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (POLYAST_*)
// 2. Config file (.polyast/config.yml or .polyast/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	// Configure viper
	v := viper.New()

	// Explicit file, or search the project's .polyast directory
	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".polyast"))
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("POLYAST")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., POLYAST_LOG_LEVEL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys
	// Parse configuration
	v.BindEnv("parse.tab_width")
	v.BindEnv("parse.include")
	v.BindEnv("parse.exclude")

	// Line cache configuration
	v.BindEnv("cache.enabled")
	v.BindEnv("cache.capacity")

	// Storage, logging and watch configuration
	v.BindEnv("storage.db_path")
	v.BindEnv("log.level")
	v.BindEnv("watch.debounce_ms")

	// Set defaults in viper
	setDefaults(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable when searching - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			// An explicit file must exist, and any other read error is fatal
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate the configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	// Parse defaults
	v.SetDefault("parse.dialects", defaults.Parse.Dialects)
	v.SetDefault("parse.tab_width", defaults.Parse.TabWidth)
	v.SetDefault("parse.include", defaults.Parse.Include)
	v.SetDefault("parse.exclude", defaults.Parse.Exclude)

	// Line cache defaults
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.capacity", defaults.Cache.Capacity)

	// Storage defaults (empty means parse does not store runs)
	v.SetDefault("storage.db_path", defaults.Storage.DBPath)

	// Logging defaults
	v.SetDefault("log.level", defaults.Log.Level)

	// Watch defaults
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
