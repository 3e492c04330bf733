// Package config provides configuration loading for polyast.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (POLYAST_*)
//  2. Config file (.polyast/config.yml, or the file given with --config)
//  3. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: POLYAST_
//   - Nested fields: Use underscores (POLYAST_PARSE_TAB_WIDTH)
package config

import (
	"github.com/mvp-joe/polyast/internal/extractor"
	"github.com/mvp-joe/polyast/internal/lexer"
)

// Config represents the complete polyast configuration.
// It can be loaded from .polyast/config.yml with environment variable overrides.
type Config struct {
	Parse   ParseConfig   `yaml:"parse" mapstructure:"parse"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
}

// ParseConfig controls tokenization and dialect resolution.
type ParseConfig struct {
	Dialects map[string]string `yaml:"dialects" mapstructure:"dialects"`   // language tag → "indentation" or "brace"
	TabWidth int               `yaml:"tab_width" mapstructure:"tab_width"` // columns per leading tab, 0 = plain whitespace
	Include  []string          `yaml:"include" mapstructure:"include"`     // glob patterns for files to parse
	Exclude  []string          `yaml:"exclude" mapstructure:"exclude"`     // glob patterns for files to skip
}

// CacheConfig controls the tokenized-line cache.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled" mapstructure:"enabled"`
	Capacity int  `yaml:"capacity" mapstructure:"capacity"` // max distinct lines kept
}

// StorageConfig defines where extraction runs are persisted.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"` // SQLite file; empty disables persistence
}

// LogConfig controls log output.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // trace, debug, info, warn, error
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Parse: ParseConfig{
			Dialects: map[string]string{
				"python": "indentation",
				"rust":   "brace",
			},
			TabWidth: 0,
			Include:  []string{},
			Exclude:  []string{},
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: lexer.DefaultCacheCapacity,
		},
		Storage: StorageConfig{
			DBPath: "",
		},
		Log: LogConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
	}
}

// ToExtractorConfig converts a Config to an extractor.Config.
func (c *Config) ToExtractorConfig() extractor.Config {
	capacity := 0
	if c.Cache.Enabled {
		capacity = c.Cache.Capacity
	}
	return extractor.Config{
		Dialects:      c.Parse.Dialects,
		TabWidth:      c.Parse.TabWidth,
		Include:       c.Parse.Include,
		Exclude:       c.Parse.Exclude,
		CacheCapacity: capacity,
	}
}
