// Package config loads Andre's configuration from TOML files and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Sentiment capture modes.
const (
	SentimentModeForm = "form"
	SentimentModeChat = "chat"
)

// API contract versions. v1 returns uploaded rows under "preview", v2 under "transactions".
const (
	APIVersion1 = "v1"
	APIVersion2 = "v2"
)

// Config holds all configuration for Andre.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	API       APIConfig       `toml:"api"`
	Sentiment SentimentConfig `toml:"sentiment"`
	Analysis  AnalysisConfig  `toml:"analysis"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	CookieSecure bool   `toml:"cookie_secure"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// APIConfig describes the remote analysis API.
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	Version   string `toml:"version"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"` // requests per second
}

// GetTimeout parses and returns the timeout duration.
func (c *APIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// WriteTimeout is the HTTP write deadline. An analysis run makes two remote
// calls in sequence, market data then /analyze, so the deadline covers two
// API timeouts with room to render the inline error.
func (c *Config) WriteTimeout() time.Duration {
	return 2*c.API.GetTimeout() + 15*time.Second
}

type SentimentConfig struct {
	Mode string `toml:"mode"`
}

type AnalysisConfig struct {
	RequireSentiment bool `toml:"require_sentiment"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{Path: "andre.db"},
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Version:   APIVersion1,
			Timeout:   "30s",
			RateLimit: 10,
		},
		Sentiment: SentimentConfig{Mode: SentimentModeForm},
		Analysis:  AnalysisConfig{RequireSentiment: true},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if host := os.Getenv("ANDRE_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("ANDRE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if v := os.Getenv("ANDRE_COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Server.CookieSecure = b
		}
	}

	if path := os.Getenv("ANDRE_DB_PATH"); path != "" {
		config.Database.Path = path
	}

	if v := os.Getenv("ANDRE_API_BASE_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv("ANDRE_API_VERSION"); v != "" {
		config.API.Version = strings.ToLower(v)
	}
	if v := os.Getenv("ANDRE_API_TIMEOUT"); v != "" {
		config.API.Timeout = v
	}
	if v := os.Getenv("ANDRE_API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.API.RateLimit = n
		}
	}

	if v := os.Getenv("ANDRE_SENTIMENT_MODE"); v != "" {
		config.Sentiment.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("ANDRE_REQUIRE_SENTIMENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Analysis.RequireSentiment = b
		}
	}

	if level := os.Getenv("ANDRE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	switch c.API.Version {
	case APIVersion1, APIVersion2:
	default:
		return fmt.Errorf("api.version %q: must be %q or %q", c.API.Version, APIVersion1, APIVersion2)
	}
	switch c.Sentiment.Mode {
	case SentimentModeForm, SentimentModeChat:
	default:
		return fmt.Errorf("sentiment.mode %q: must be %q or %q", c.Sentiment.Mode, SentimentModeForm, SentimentModeChat)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}
