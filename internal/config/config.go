// Package config provides configuration management for the newsharvest
// application. It handles loading, validation, and access to
// configuration values from YAML files and environment variables via
// viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Crawl defaults. The page cap is a safety bound against runaway or
// misbehaving sources, not a content signal.
const (
	DefaultMaxPages    = 20
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 5 * time.Second
	DefaultPageDelay   = 2 * time.Second
	DefaultSourceFile  = "sources.yml"
	DefaultSnapshotDir = "."
	DefaultTopic       = "news-events"
	DefaultRedisAddr   = "localhost:6379"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

// CrawlConfig holds the pagination and retry settings shared by every
// paginated source.
type CrawlConfig struct {
	// MaxPages bounds the page cursor; the engine never fetches a
	// page past this number.
	MaxPages int `mapstructure:"max_pages"`
	// MaxAttempts is the per-page fetch attempt budget.
	MaxAttempts int `mapstructure:"max_attempts"`
	// RetryDelay is the fixed pause between fetch attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// PageDelay is the fixed pacing pause between consecutive pages.
	PageDelay time.Duration `mapstructure:"page_delay"`
	// SourceFile is the path of the YAML source table.
	SourceFile string `mapstructure:"source_file"`
	// SnapshotDir is where per-source CSV snapshots are written.
	SnapshotDir string `mapstructure:"snapshot_dir"`
}

// StreamConfig holds the event-stream settings.
type StreamConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// Topic is the destination stream for published batches.
	Topic string `mapstructure:"topic"`
}

// ElasticsearchConfig holds the optional archive settings.
type ElasticsearchConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	APIKey      string   `mapstructure:"api_key"`
	IndexPrefix string   `mapstructure:"index_prefix"`
}

// ExtractConfig holds the extraction-engine settings.
type ExtractConfig struct {
	// Model is the language model used for structured extraction.
	Model string `mapstructure:"model"`
	// RequestTimeout bounds a single fetch or extraction call.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// UserAgent is sent on page fetches.
	UserAgent string `mapstructure:"user_agent"`
}

// MetricsConfig holds the metrics endpoint settings used in scheduled
// mode.
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// Config represents the application configuration.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	Crawl         CrawlConfig         `mapstructure:"crawl"`
	Stream        StreamConfig        `mapstructure:"stream"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Extract       ExtractConfig       `mapstructure:"extract"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// Load builds the configuration from the process-wide viper instance.
// Defaults and environment bindings are installed by the root command
// before Load is called.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills zero values that viper defaults did not cover,
// which happens when a config file sets a section but omits keys.
func (c *Config) applyDefaults() {
	if c.Crawl.MaxPages <= 0 {
		c.Crawl.MaxPages = DefaultMaxPages
	}
	if c.Crawl.MaxAttempts <= 0 {
		c.Crawl.MaxAttempts = DefaultMaxAttempts
	}
	if c.Crawl.RetryDelay <= 0 {
		c.Crawl.RetryDelay = DefaultRetryDelay
	}
	if c.Crawl.PageDelay < 0 {
		c.Crawl.PageDelay = DefaultPageDelay
	}
	if c.Crawl.SourceFile == "" {
		c.Crawl.SourceFile = DefaultSourceFile
	}
	if c.Crawl.SnapshotDir == "" {
		c.Crawl.SnapshotDir = DefaultSnapshotDir
	}
	if c.Stream.Addr == "" {
		c.Stream.Addr = DefaultRedisAddr
	}
	if c.Stream.Topic == "" {
		c.Stream.Topic = DefaultTopic
	}
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.Crawl.MaxPages <= 0 {
		return fmt.Errorf("crawl.max_pages must be positive, got %d", c.Crawl.MaxPages)
	}
	if c.Crawl.MaxAttempts <= 0 {
		return fmt.Errorf("crawl.max_attempts must be positive, got %d", c.Crawl.MaxAttempts)
	}
	if c.Elasticsearch.Enabled && len(c.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("elasticsearch.addresses is required when the archive is enabled")
	}
	return nil
}
