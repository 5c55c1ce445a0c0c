package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/tailored-agentic-units/draftstate/observability"
)

// Config holds provider initialization parameters. Observer names an
// entry in the observability registry.
//
// Example JSON:
//
//	{
//	  "name": "counter",
//	  "observer": "slog",
//	  "always_commit": false
//	}
type Config struct {
	Name         string `json:"name,omitempty" toml:"name"`
	Observer     string `json:"observer,omitempty" toml:"observer"`
	AlwaysCommit bool   `json:"always_commit,omitempty" toml:"always_commit"`
}

// DefaultConfig returns a Config that logs through the "slog" observer.
func DefaultConfig() Config {
	return Config{
		Observer: "slog",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.AlwaysCommit {
		c.AlwaysCommit = true
	}
}

// LoadConfig reads a config file, merges it over DefaultConfig and returns
// the result. Files ending in .toml are parsed as TOML, anything else as
// JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if strings.EqualFold(filepath.Ext(filename), ".toml") {
		err = toml.Unmarshal(data, &loaded)
	} else {
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// Options converts the config into provider options. It fails when the
// observer name is not registered.
func (c *Config) Options() ([]Option, error) {
	var opts []Option

	if c.Observer != "" {
		obs, err := observability.GetObserver(c.Observer)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		opts = append(opts, WithObserver(obs))
	}
	if c.Name != "" {
		opts = append(opts, WithName(c.Name))
	}
	if c.AlwaysCommit {
		opts = append(opts, WithAlwaysCommit())
	}
	return opts, nil
}

// NewFromConfig creates a provider from configuration. Options passed here
// are applied after the config and override it.
func NewFromConfig[T, A any](cfg *Config, initial T, updaters Updaters[T, A], opts ...Option) (*Provider[T, A], error) {
	base, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(initial, updaters, append(base, opts...)...), nil
}
