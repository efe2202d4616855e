package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if BURNUP_CONFIG is set
//  3. env (prefix BURNUP_)
//
// A configuration error is fatal to the run; nothing partial is returned.
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("BURNUP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: BURNUP_API_KEY, BURNUP_BOARD, BURNUP_REJECT, ...
	// Map env keys like BURNUP_PAGE_LIMIT -> page_limit (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("BURNUP_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "burnup_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects settings no run could work with. Credentials and the
// board name are checked by the operations that need them, not here, so
// that exploratory listings stay usable with a minimal environment.
func validate(cfg *Config) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	}
	if cfg.PageLimit <= 0 {
		return fmt.Errorf("%w: page_limit must be positive", ErrInvalidConfig)
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: http_timeout_seconds must be positive", ErrInvalidConfig)
	}
	if utf8.RuneCountInString(cfg.Delimiter) != 1 {
		return fmt.Errorf("%w: delimiter must be a single character", ErrInvalidConfig)
	}
	return nil
}
