// Package config loads and validates the application configuration from a
// YAML file with environment-variable overrides (GROCEFY_* prefix).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Paths        PathsConfig     `mapstructure:"paths"`
	Supermarkets []string        `mapstructure:"supermarkets"`
	Optimizer    OptimizerConfig `mapstructure:"optimizer"`
	Scrape       ScrapeConfig    `mapstructure:"scrape"`
	Telegram     TelegramConfig  `mapstructure:"telegram"`
	Logging      LoggingConfig   `mapstructure:"logging"`
}

// PathsConfig holds input, output, and ledger locations.
type PathsConfig struct {
	ProductsCSV string `mapstructure:"products_csv"`
	ResultsCSV  string `mapstructure:"results_csv"`
	HistoryDir  string `mapstructure:"history_dir"`
}

// OptimizerConfig holds the optimization policy switches.
type OptimizerConfig struct {
	// UseMembershipPriceForCurrent controls the current-supermarket
	// baseline: membership price (falling back to regular) when true,
	// regular price only when false.
	UseMembershipPriceForCurrent bool `mapstructure:"use_membership_price_for_current"`
}

// ScrapeConfig holds scraper-service client and scheduling configuration.
type ScrapeConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	BatchSize      int           `mapstructure:"batch_size"`
	BatchDelay     time.Duration `mapstructure:"batch_delay"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("GROCEFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Path defaults
	v.SetDefault("paths.products_csv", "data/products.csv")
	v.SetDefault("paths.results_csv", "results/optimization_results.csv")
	v.SetDefault("paths.history_dir", "data/history")

	// Target supermarkets
	v.SetDefault("supermarkets", []string{"Tesco", "Sainsburys", "Aldi", "Lidl", "Morrisons", "Waitrose"})

	// Optimizer defaults
	v.SetDefault("optimizer.use_membership_price_for_current", false)

	// Scrape defaults
	v.SetDefault("scrape.base_url", "")
	v.SetDefault("scrape.timeout", "60s")
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.retry_delay_base", "1s")
	v.SetDefault("scrape.batch_size", 0)
	v.SetDefault("scrape.batch_delay", "60s")

	// Telegram defaults. Token and chat ID default to empty so the
	// GROCEFY_TELEGRAM_* environment overrides are picked up.
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Paths.ProductsCSV == "" {
		return fmt.Errorf("paths.products_csv is required")
	}
	if c.Paths.ResultsCSV == "" {
		return fmt.Errorf("paths.results_csv is required")
	}
	if c.Paths.HistoryDir == "" {
		return fmt.Errorf("paths.history_dir is required")
	}

	if len(c.Supermarkets) == 0 {
		return fmt.Errorf("supermarkets must contain at least one supermarket")
	}

	if c.Scrape.BaseURL == "" {
		return fmt.Errorf("scrape.base_url is required")
	}
	if c.Scrape.Timeout < time.Second {
		return fmt.Errorf("scrape.timeout must be at least 1 second")
	}
	if c.Scrape.MaxRetries < 1 {
		return fmt.Errorf("scrape.max_retries must be at least 1")
	}
	if c.Scrape.BatchSize < 0 {
		return fmt.Errorf("scrape.batch_size must not be negative")
	}
	if c.Scrape.BatchDelay < 0 {
		return fmt.Errorf("scrape.batch_delay must not be negative")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
