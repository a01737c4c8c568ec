// Package config loads Steward panel configuration from steward.yml and
// environment variables. All field, media, and cache defaults flow from
// here so host applications configure the panel in one place.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the Steward panel configuration
type Config struct {
	Path       string           `mapstructure:"path"`
	Guard      string           `mapstructure:"guard"`
	Media      MediaConfig      `mapstructure:"media"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Fields     FieldConfig      `mapstructure:"fields"`
}

// MediaConfig governs file and media-library field behavior
type MediaConfig struct {
	Disk         string   `mapstructure:"disk"`
	Root         string   `mapstructure:"root"`
	MaxFileSize  int64    `mapstructure:"max_file_size"`
	MaxTotalSize int64    `mapstructure:"max_total_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
	AllowedExts  []string `mapstructure:"allowed_exts"`
}

// PaginationConfig holds list-endpoint pagination defaults
type PaginationConfig struct {
	PerPage    int `mapstructure:"per_page"`
	MaxPerPage int `mapstructure:"max_per_page"`
}

// CacheConfig holds TTLs for badge and metric memoization
type CacheConfig struct {
	Prefix    string        `mapstructure:"prefix"`
	BadgeTTL  time.Duration `mapstructure:"badge_ttl"`
	MetricTTL time.Duration `mapstructure:"metric_ttl"`
}

// FieldConfig holds cross-field defaults
type FieldConfig struct {
	DateFormat     string `mapstructure:"date_format"`
	DateTimeFormat string `mapstructure:"datetime_format"`
	Timezone       string `mapstructure:"timezone"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// Default returns the configuration used when no steward.yml is present
func Default() *Config {
	cfg, _ := load(viper.New(), false)
	return cfg
}

// Load loads the configuration from steward.yml or steward.yaml in the
// working directory, falling back to defaults when no file exists.
// Environment variables override file values (STEWARD_MEDIA_DISK, etc.).
func Load() (*Config, error) {
	return load(viper.New(), true)
}

func load(v *viper.Viper, readFile bool) (*Config, error) {
	v.SetDefault("path", "/admin")
	v.SetDefault("guard", "web")
	v.SetDefault("media.disk", "local")
	v.SetDefault("media.root", "storage/media")
	v.SetDefault("media.max_file_size", 10<<20)
	v.SetDefault("media.max_total_size", 50<<20)
	v.SetDefault("media.allowed_types", []string{})
	v.SetDefault("media.allowed_exts", []string{})
	v.SetDefault("pagination.per_page", 25)
	v.SetDefault("pagination.max_per_page", 100)
	v.SetDefault("cache.prefix", "steward:")
	v.SetDefault("cache.badge_ttl", 5*time.Minute)
	v.SetDefault("cache.metric_ttl", 2*time.Minute)
	v.SetDefault("fields.date_format", "2006-01-02")
	v.SetDefault("fields.datetime_format", "2006-01-02 15:04:05")
	v.SetDefault("fields.timezone", "UTC")
	v.SetDefault("fields.currency_symbol", "$")

	if readFile {
		v.SetConfigName("steward")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		v.SetEnvPrefix("STEWARD")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// No config file - run on defaults
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig checks configuration invariants
func validateConfig(config *Config) error {
	if !strings.HasPrefix(config.Path, "/") {
		return fmt.Errorf("panel path must start with /, got %q", config.Path)
	}
	if config.Pagination.PerPage <= 0 {
		return fmt.Errorf("pagination.per_page must be positive, got %d", config.Pagination.PerPage)
	}
	if config.Pagination.MaxPerPage < config.Pagination.PerPage {
		return fmt.Errorf("pagination.max_per_page (%d) must be >= per_page (%d)",
			config.Pagination.MaxPerPage, config.Pagination.PerPage)
	}
	if config.Media.MaxFileSize <= 0 {
		return fmt.Errorf("media.max_file_size must be positive, got %d", config.Media.MaxFileSize)
	}
	if config.Media.MaxTotalSize < config.Media.MaxFileSize {
		return fmt.Errorf("media.max_total_size (%d) must be >= max_file_size (%d)",
			config.Media.MaxTotalSize, config.Media.MaxFileSize)
	}
	return nil
}
