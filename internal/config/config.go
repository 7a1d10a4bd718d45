// Package config loads service settings from an optional YAML file and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"formsapi/internal/logging"

	"gopkg.in/yaml.v2"
)

// ConfigFileEnv names the variable pointing at the YAML config file
const ConfigFileEnv = "CONFIG_FILE_PATH"

// Store backends
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	HTTPPort string `yaml:"http_port"`
	Store    string `yaml:"store"`

	Mongo struct {
		URI            string `yaml:"uri"`
		Database       string `yaml:"database"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"mongo"`

	Redis struct {
		Addr            string `yaml:"addr"` // empty disables caching
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Auth struct {
		TokenSignKey string `yaml:"token_sign_key"`
	} `yaml:"auth"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	Logging logging.Config `yaml:"logging"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	cfg := &Config{
		HTTPPort: "8080",
		Store:    StoreMongo,
	}
	cfg.Mongo.URI = "mongodb://localhost:27017"
	cfg.Mongo.Database = "forms"
	cfg.Mongo.TimeoutSeconds = 10
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.CacheTTLSeconds = 600
	cfg.Auth.TokenSignKey = "change-me-in-production"
	cfg.CORSAllowedOrigins = []string{"*"}
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads the file named by CONFIG_FILE_PATH, when set, over the
// defaults and then applies environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, rejecting unknown keys
func Parse(data []byte, cfg *Config) error {
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.Store = getEnv("STORE", cfg.Store)
	cfg.Mongo.URI = getEnv("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = getEnv("MONGO_DB", cfg.Mongo.Database)
	cfg.Mongo.TimeoutSeconds = getEnvInt("MONGO_TIMEOUT_SECONDS", cfg.Mongo.TimeoutSeconds)
	if addr, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Redis.Addr = addr
	}
	cfg.Redis.CacheTTLSeconds = getEnvInt("CACHE_TTL", cfg.Redis.CacheTTLSeconds)
	cfg.Auth.TokenSignKey = getEnv("TOKEN_SIGN_KEY", cfg.Auth.TokenSignKey)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
	}
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Filename = getEnv("LOG_FILE", cfg.Logging.Filename)
}

// Validate checks settings that have no usable fallback
func (c *Config) Validate() error {
	if c.Store != StoreMongo && c.Store != StoreMemory {
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Auth.TokenSignKey == "" {
		return fmt.Errorf("token sign key must be set")
	}
	if c.Mongo.TimeoutSeconds <= 0 {
		return fmt.Errorf("mongo timeout must be positive")
	}
	return nil
}

func (c *Config) MongoTimeout() time.Duration {
	return time.Duration(c.Mongo.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
