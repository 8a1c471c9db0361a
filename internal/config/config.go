// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the full application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Account  AccountConfig  `yaml:"account"`
	Quote    QuoteConfig    `yaml:"quote"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig holds ledger store settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AccountConfig holds the default account settings.
type AccountConfig struct {
	Name         string  `yaml:"name"`
	StartingCash float64 `yaml:"starting_cash"`
}

// QuoteConfig holds quote provider settings.
type QuoteConfig struct {
	Provider          string `yaml:"provider"` // yahoo | static
	BaseURL           string `yaml:"base_url"`
	RequestsPerSecond int    `yaml:"requests_per_second"`
	TimeoutSec        int    `yaml:"timeout_sec"`
}

// MetricsConfig holds metrics server settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "paper_trader.db"},
		Account:  AccountConfig{Name: "default", StartingCash: 100_000},
		Quote: QuoteConfig{
			Provider:          "yahoo",
			BaseURL:           "https://query1.finance.yahoo.com",
			RequestsPerSecond: 4,
			TimeoutSec:        10,
		},
		Metrics: MetricsConfig{Enabled: false, Port: 9090, Path: "/metrics"},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes, with environment
// variable expansion.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Account.Name == "" {
		errs = append(errs, "account.name is required")
	}
	if c.Account.StartingCash <= 0 {
		errs = append(errs, "account.starting_cash must be positive")
	}

	switch c.Quote.Provider {
	case "yahoo", "static":
	default:
		errs = append(errs, "quote.provider must be 'yahoo' or 'static'")
	}
	if c.Quote.RequestsPerSecond <= 0 {
		c.Quote.RequestsPerSecond = 4 // default
	}
	if c.Quote.TimeoutSec <= 0 {
		c.Quote.TimeoutSec = 10 // default
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			errs = append(errs, "metrics.port must be a valid port")
		}
		if c.Metrics.Path == "" {
			c.Metrics.Path = "/metrics"
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
