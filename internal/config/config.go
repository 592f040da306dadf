package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the resource prediction server
type Config struct {
	// Server configuration
	HTTP HTTPConfig

	// Debug enables gin debug mode and development logging. Off by default.
	Debug bool `env:"RESFORECAST_DEBUG" envDefault:"false"`

	// Artifact locations
	Artifacts ArtifactConfig

	// Logging configuration
	Log LogConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// HTTPConfig holds HTTP listener configuration
type HTTPConfig struct {
	Host         string `env:"RESFORECAST_HTTP_HOST" envDefault:"0.0.0.0"`
	Port         int    `env:"RESFORECAST_HTTP_PORT" envDefault:"5000"`
	MaxBodyBytes int64  `env:"HTTP_MAX_BODY_BYTES" envDefault:"65536"`
}

// ArtifactConfig holds the paths of the startup artifacts
type ArtifactConfig struct {
	ModelPath        string `env:"MODEL_PATH" envDefault:"resource_prediction_model.json"`
	InputScalerPath  string `env:"SCALER_X_PATH" envDefault:"scaler_X.json"`
	OutputScalerPath string `env:"SCALER_Y_PATH" envDefault:"scaler_y.json"`
}

// LogConfig holds logger configuration. When File is empty logs go to stderr.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	HTTPRead  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	HTTPWrite time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	Shutdown  time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"15s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.HTTP.MaxBodyBytes)
	}

	// Artifacts are fixed deployment inputs, none may be empty
	if c.Artifacts.ModelPath == "" {
		return fmt.Errorf("model path is required")
	}
	if c.Artifacts.InputScalerPath == "" {
		return fmt.Errorf("input scaler path is required")
	}
	if c.Artifacts.OutputScalerPath == "" {
		return fmt.Errorf("output scaler path is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}

	if c.Timeouts.HTTPRead <= 0 || c.Timeouts.HTTPWrite <= 0 {
		return fmt.Errorf("HTTP timeouts must be positive")
	}
	if c.Timeouts.Shutdown <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}
