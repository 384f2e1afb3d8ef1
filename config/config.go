package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Storefront StorefrontConfig
	Groomers   GroomersConfig
	Search     SearchConfig
	AI         AIConfig
	Cache      CacheConfig
	Recommend  RecommendConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorefrontConfig holds the e-commerce storefront scraping configuration
type StorefrontConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RequestsSec float64       `mapstructure:"requests_sec"`
}

// GroomersConfig holds the grooming marketplace configuration
type GroomersConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	DefaultLocation string `mapstructure:"default_location"`
	MaxResults      int    `mapstructure:"max_results"`
}

// SearchConfig holds the web-search provider configuration.
// An empty APIKey is valid: review retrieval falls back to mock data.
type SearchConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// AIConfig holds the language-model provider configuration.
// An empty APIKey is valid: scoring falls back to the rule-based strategy.
type AIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RecommendConfig holds recommendation pipeline configuration
type RecommendConfig struct {
	MaxRecommendations int `mapstructure:"max_recommendations"`
	Concurrency        int `mapstructure:"concurrency"`
	MaxReviews         int `mapstructure:"max_reviews"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/petscout/")

	// Environment variable settings
	v.SetEnvPrefix("PETSCOUT")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Storefront defaults
	v.SetDefault("storefront.base_url", "https://www.petexpress.com.ph")
	v.SetDefault("storefront.max_retries", 3)
	v.SetDefault("storefront.timeout", "30s")
	v.SetDefault("storefront.requests_sec", 2.0)

	// Groomer marketplace defaults
	v.SetDefault("groomers.base_url", "https://www.petbacker.ph")
	v.SetDefault("groomers.default_location", "manila--metro-manila--philippines")
	v.SetDefault("groomers.max_results", 3)

	// Web search defaults (key intentionally has no default)
	v.SetDefault("search.base_url", "https://api.tavily.com")

	// AI defaults (key intentionally has no default)
	v.SetDefault("ai.model", "o3-mini")
	v.SetDefault("ai.timeout", "60s")

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")

	// Recommendation pipeline defaults
	v.SetDefault("recommend.max_recommendations", 5)
	v.SetDefault("recommend.concurrency", 3)
	v.SetDefault("recommend.max_reviews", 5)
}

// validate validates the configuration. API keys are deliberately not
// required: missing credentials select the deterministic fallbacks.
func validate(config *Config) error {
	if config.Storefront.BaseURL == "" {
		return fmt.Errorf("storefront base URL is required (set PETSCOUT_STOREFRONT_BASE_URL)")
	}

	if config.Groomers.BaseURL == "" {
		return fmt.Errorf("groomers base URL is required (set PETSCOUT_GROOMERS_BASE_URL)")
	}

	if config.Storefront.MaxRetries < 1 {
		return fmt.Errorf("storefront max_retries must be at least 1, got: %d", config.Storefront.MaxRetries)
	}

	if config.Recommend.Concurrency < 1 {
		return fmt.Errorf("recommend concurrency must be at least 1, got: %d", config.Recommend.Concurrency)
	}

	return nil
}
