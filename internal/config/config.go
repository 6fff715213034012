package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the hosted prediction service.
const DefaultEndpoint = "https://aidetect-github-io.onrender.com"

// Config holds all aidetect configuration.
type Config struct {
	// Remote prediction service
	Endpoint       string        `yaml:"endpoint"`
	RetryInterval  time.Duration `yaml:"retry_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Server  ServerConfig  `yaml:"server"`
	Qdrant  QdrantConfig  `yaml:"qdrant"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the local web front end.
type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// QdrantConfig configures the optional submission history store.
// History is disabled when Host is empty.
type QdrantConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BatchConfig configures concurrent submission of form files.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       DefaultEndpoint,
		RetryInterval:  5 * time.Second,
		RequestTimeout: 30 * time.Second,
		Server: ServerConfig{
			Port: 8080,
		},
		Qdrant: QdrantConfig{
			Port: 6334,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AIDETECT_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("AIDETECT_RETRY_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RetryInterval = d
		}
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("SERVER_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		c.Qdrant.Host = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Qdrant.Port = p
		}
	}
	if v := os.Getenv("NUM_WORKERS"); v != "" {
		if w, err := strconv.Atoi(v); err == nil {
			c.Batch.Workers = w
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// HistoryEnabled reports whether a qdrant host is configured.
func (c *Config) HistoryEnabled() bool {
	return c.Qdrant.Host != ""
}

// Validate checks the configuration for values the services cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q", c.Endpoint)
	}
	if c.RetryInterval <= 0 {
		return fmt.Errorf("retry_interval must be positive, got %s", c.RetryInterval)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}
	return nil
}
