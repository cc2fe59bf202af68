// Package config loads the optional TOML file that tunes the explain-rule
// thresholds and the watch poll interval. A missing file means defaults.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/analyzer/internal/classify"
)

type Config struct {
	PollIntervalMs int            `toml:"poll_interval_ms"`
	Rules          classify.Rules `toml:"rules"`
}

func Default() Config {
	return Config{
		PollIntervalMs: 2000,
		Rules:          classify.DefaultRules(),
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
