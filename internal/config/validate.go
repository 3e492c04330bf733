package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"

	"github.com/mvp-joe/polyast/internal/source"
)

var (
	// ErrInvalidDialect indicates a dialect name other than indentation or brace
	ErrInvalidDialect = errors.New("invalid dialect")

	// ErrInvalidTabWidth indicates a negative tab width
	ErrInvalidTabWidth = errors.New("invalid tab width")

	// ErrInvalidPattern indicates an include/exclude glob that does not compile
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidDebounce indicates a negative debounce period
	ErrInvalidDebounce = errors.New("invalid debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateParse(&cfg.Parse); err != nil {
		errs = append(errs, err)
	}

	if err := validateCache(&cfg.Cache); err != nil {
		errs = append(errs, err)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil || cfg.Log.Level == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Log.Level))
	}

	if cfg.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMS))
	}

	return joinErrors(errs)
}

func validateParse(cfg *ParseConfig) error {
	var errs []error

	for tag, name := range cfg.Dialects {
		if _, err := source.ParseDialect(name); err != nil {
			errs = append(errs, fmt.Errorf("%w: language %q: must be 'indentation' or 'brace', got '%s'", ErrInvalidDialect, tag, name))
		}
	}

	if cfg.TabWidth < 0 {
		errs = append(errs, fmt.Errorf("%w: tab_width cannot be negative, got %d", ErrInvalidTabWidth, cfg.TabWidth))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	return joinErrors(errs)
}

func validateCache(cfg *CacheConfig) error {
	if cfg.Enabled && cfg.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive when the cache is enabled, got %d", ErrInvalidCacheSettings, cfg.Capacity)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every input stays reachable through errors.Is.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}

	format := "validation failed:" + strings.Repeat("\n  - %w", len(errs))
	args := make([]any, len(errs))
	for i, err := range errs {
		args[i] = err
	}
	return fmt.Errorf(format, args...)
}
