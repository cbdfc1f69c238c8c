package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Content   ContentConfig
	Exec      ExecConfig
	Python    PythonConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// ContentConfig points at topic sources layered over the embedded seed.
type ContentConfig struct {
	Dir      string `envconfig:"CONTENT_DIR"`
	URL      string `envconfig:"CONTENT_URL"`
	SkipSeed bool   `envconfig:"CONTENT_SKIP_SEED" default:"false"`
}

// ExecConfig holds execution bridge settings.
type ExecConfig struct {
	Language string        `envconfig:"EXEC_LANGUAGE" default:"python"`
	Timeout  time.Duration `envconfig:"EXEC_TIMEOUT" default:"5s"`
	Grace    time.Duration `envconfig:"EXEC_GRACE" default:"2s"`
	PoolSize int           `envconfig:"EXEC_POOL_SIZE" default:"2"`
}

// PythonConfig pins the WebAssembly interpreter distribution.
type PythonConfig struct {
	DistURL     string `envconfig:"PYTHON_DIST_URL"`
	DistVersion string `envconfig:"PYTHON_DIST_VERSION"`
	DistSHA256  string `envconfig:"PYTHON_DIST_SHA256"`
	CacheDir    string `envconfig:"PYTHON_CACHE_DIR"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Languages the bridge can host
const (
	LanguagePython     = "python"
	LanguageJavaScript = "javascript"
)

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Exec.Language {
	case LanguagePython, LanguageJavaScript:
	default:
		return fmt.Errorf("unsupported EXEC_LANGUAGE %q", c.Exec.Language)
	}
	if c.Exec.Timeout <= 0 {
		return fmt.Errorf("EXEC_TIMEOUT must be positive, got %s", c.Exec.Timeout)
	}
	if c.Exec.PoolSize <= 0 {
		return fmt.Errorf("EXEC_POOL_SIZE must be positive, got %d", c.Exec.PoolSize)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Exec: ExecConfig{
			Language: LanguagePython,
			Timeout:  5 * time.Second,
			Grace:    2 * time.Second,
			PoolSize: 2,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
