// Package config provides configuration management for the decay monitor.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Simulation  SimulationDefaults `mapstructure:"simulation"`
	Drag        DragDefaults       `mapstructure:"drag"`
	UI          UIConfig           `mapstructure:"ui"`
	Credentials Credentials        `mapstructure:"-"` // Loaded separately
}

// SimulationDefaults holds default Monte Carlo parameters.
type SimulationDefaults struct {
	NPaths int   `mapstructure:"n_paths"`
	Seed   int64 `mapstructure:"seed"`
}

// DragDefaults holds default trend/drag reduction parameters.
type DragDefaults struct {
	LeverageK      float64 `mapstructure:"leverage_k"`
	LookbackWindow int     `mapstructure:"lookback_window"`
	RiskFreeRate   float64 `mapstructure:"risk_free_rate"`
	Workers        int     `mapstructure:"workers"` // 0 = sequential reference reduction
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// Credentials holds API credentials.
type Credentials struct {
	MarketData MarketDataCredentials `mapstructure:"marketdata"`
	OpenAI     OpenAICredentials     `mapstructure:"openai"`
}

// MarketDataCredentials holds the options-chain API token.
type MarketDataCredentials struct {
	APIToken string `mapstructure:"api_token"`
}

// OpenAICredentials holds the optional commentary API key.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/decay-monitor"
	}
	return filepath.Join(home, ".config", "decay-monitor")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("simulation.n_paths", 5000)
	v.SetDefault("simulation.seed", 42)
	v.SetDefault("drag.leverage_k", 1.0)
	v.SetDefault("drag.lookback_window", 10)
	v.SetDefault("drag.risk_free_rate", 0.0)
	v.SetDefault("drag.workers", 0)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := createTemplateConfig(configDir); werr != nil {
				return werr
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("openai.model", "gpt-4o-mini")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if werr := createTemplateCredentials(configDir); werr != nil {
				return werr
			}
			return v.Unmarshal(creds)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKETDATA_API_KEY"); v != "" {
		cfg.Credentials.MarketData.APIToken = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Simulation.NPaths <= 0 {
		return fmt.Errorf("simulation.n_paths must be positive")
	}
	if c.Drag.LeverageK < 0 {
		return fmt.Errorf("drag.leverage_k must be non-negative")
	}
	if c.Drag.LookbackWindow <= 0 {
		return fmt.Errorf("drag.lookback_window must be positive")
	}
	if c.Drag.Workers < 0 {
		return fmt.Errorf("drag.workers must be non-negative")
	}
	return nil
}

// CommentaryEnabled reports whether the OpenAI commentary agent can run.
func (c *Config) CommentaryEnabled() bool {
	return c.Credentials.OpenAI.APIKey != ""
}
