// Package server provides configuration helpers that define runtime defaults
// and validation for the Parlor chat service.
package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreBackendFile  = "file"
	StoreBackendRedis = "redis"
)

// Config holds the server configuration settings.
type Config struct {
	Port            string        `env:"SERVER_PORT" envDefault:":8080"`
	DataDir         string        `env:"DATA_DIR" envDefault:"data"`
	UploadsDir      string        `env:"UPLOADS_DIR" envDefault:"uploads"`
	PublicDir       string        `env:"PUBLIC_DIR" envDefault:"public"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE" envDefault:"65536"`
	StoreBackend    string        `env:"STORE_BACKEND" envDefault:"file"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// NewConfig creates a Config populated with default values for all settings,
// ignoring the process environment.
func NewConfig() *Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		// Defaults alone always parse; reaching this means a programming error.
		panic(err)
	}
	cfg.sanitize()
	return &cfg
}

// NewConfigFromEnv creates a Config from environment variables, falling back
// to defaults for anything unset, then sanitizes the result.
func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.sanitize()
	return &cfg, nil
}

func (c *Config) sanitize() {
	if c.Port == "" {
		c.Port = ":8080"
	}
	if !strings.HasPrefix(c.Port, ":") && !strings.Contains(c.Port, ":") {
		c.Port = ":" + c.Port
	}

	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "uploads"
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}

	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 65536
	}

	switch c.StoreBackend {
	case StoreBackendFile, StoreBackendRedis:
	default:
		c.StoreBackend = StoreBackendFile
	}

	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}
