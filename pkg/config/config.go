package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"

	"github.com/soundprediction/inquiro/pkg/alert"
	"github.com/soundprediction/inquiro/pkg/storage"
	"github.com/soundprediction/inquiro/pkg/synthesis"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Research pipeline configuration
	Research ResearchConfig `mapstructure:"research"`

	// Search provider configuration
	Search SearchConfig `mapstructure:"search"`

	// Storage configuration
	Storage storage.Config `mapstructure:"storage"`

	// Synthesis configuration
	Synthesis synthesis.Config `mapstructure:"synthesis"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Alert configuration
	Alert alert.EmailConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// ResearchConfig holds pipeline tuning knobs
type ResearchConfig struct {
	MaxDepth           int `mapstructure:"max_depth"`
	MaxURLs            int `mapstructure:"max_urls"`
	CacheExpiryMinutes int `mapstructure:"cache_expiry_minutes"`
	RateLimit          int `mapstructure:"rate_limit"`
}

// SearchConfig holds search provider configuration
type SearchConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Research defaults
	viper.SetDefault("research.max_depth", 3)
	viper.SetDefault("research.max_urls", 5)
	viper.SetDefault("research.cache_expiry_minutes", 60)
	viper.SetDefault("research.rate_limit", 5)

	// Search defaults
	viper.SetDefault("search.base_url", "https://api.tavily.com")

	// Storage defaults
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.path", "data")

	// Synthesis defaults
	viper.SetDefault("synthesis.model", "gpt-4o-mini")
	viper.SetDefault("synthesis.temperature", 0.3)
	viper.SetDefault("synthesis.max_tokens", 1024)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		defaultPath := fmt.Sprintf("%s/.inquiro/telemetry", home)
		viper.SetDefault("telemetry.parquet_path", defaultPath)
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Search provider credentials
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		config.Search.APIKey = key
	}
	if url := os.Getenv("TAVILY_BASE_URL"); url != "" {
		config.Search.BaseURL = url
	}

	// Synthesis credentials
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.Synthesis.APIKey = key
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		config.Synthesis.BaseURL = url
	}

	// Storage settings
	if backend := os.Getenv("STORAGE_TYPE"); backend != "" {
		config.Storage.Type = backend
	}
	if path := os.Getenv("STORAGE_PATH"); path != "" {
		config.Storage.Path = path
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
