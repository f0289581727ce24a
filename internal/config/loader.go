package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TERMSTAKE_CONFIG is set
//  3. env (prefix TERMSTAKE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TERMSTAKE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TERMSTAKE_ADDR, TERMSTAKE_COMMAND_QUEUE_SIZE, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("TERMSTAKE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "termstake_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.CommandQueueSize <= 0:
		return fmt.Errorf("%w: command_queue_size must be positive", ErrInvalidConfig)
	case cfg.BlockIntervalMS < 0:
		return fmt.Errorf("%w: block_interval_ms must not be negative", ErrInvalidConfig)
	case cfg.DictionarySize == 0:
		return fmt.Errorf("%w: dictionary_size must be positive", ErrInvalidConfig)
	case cfg.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case cfg.InitialAdmin == "":
		return fmt.Errorf("%w: initial_admin must not be empty", ErrInvalidConfig)
	}
	return nil
}
