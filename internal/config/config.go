// Tablescout - Personalized Venue Recommendation Engine
// Copyright 2026 Plateworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plateworks/tablescout

// Package config loads the Tablescout server configuration from layered
// sources: built-in defaults, an optional YAML file, then environment
// variables with the TABLESCOUT_ prefix. Later layers win.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/plateworks/tablescout/internal/logging"
	"github.com/plateworks/tablescout/internal/recommend"
)

// DefaultConfigPaths lists the config file search paths, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tablescout/config.yaml",
	"/etc/tablescout/config.yml",
}

// ConfigPathEnvVar overrides the config file search entirely.
const ConfigPathEnvVar = "TABLESCOUT_CONFIG"

// envPrefix namespaces the environment variables read as layer three,
// e.g. TABLESCOUT_SERVER_PORT -> server.port.
const envPrefix = "TABLESCOUT_"

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig      `json:"server" koanf:"server"`
	Logging   logging.Config    `json:"logging" koanf:"logging"`
	Store     StoreConfig       `json:"store" koanf:"store"`
	Recommend *recommend.Config `json:"recommend" koanf:"recommend"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `json:"host" koanf:"host"`
	Port            int           `json:"port" koanf:"port"`
	ReadTimeout     time.Duration `json:"read_timeout" koanf:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" koanf:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout"`

	// RateLimit is the per-client request budget per minute. Zero disables
	// rate limiting.
	RateLimit int `json:"rate_limit" koanf:"rate_limit"`

	// CORSOrigins lists allowed cross-origin request origins.
	CORSOrigins []string `json:"cors_origins" koanf:"cors_origins"`
}

// StoreConfig controls the embedded database.
type StoreConfig struct {
	// Dir is the Badger data directory.
	Dir string `json:"dir" koanf:"dir"`

	// SeedPath points to an optional venue seed file applied at startup.
	SeedPath string `json:"seed_path" koanf:"seed_path"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       120,
			CORSOrigins:     []string{"*"},
		},
		Logging: logging.DefaultConfig(),
		Store: StoreConfig{
			Dir: "/data/tablescout",
		},
		Recommend: recommend.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// TABLESCOUT_-prefixed environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be non-negative, got %d", c.Server.RateLimit)
	}
	if c.Store.Dir == "" {
		return fmt.Errorf("store.dir must not be empty")
	}
	if c.Recommend == nil {
		return fmt.Errorf("recommend section must not be empty")
	}
	return c.Recommend.Validate()
}

// envTransform maps TABLESCOUT_SERVER_READ_TIMEOUT to server.read_timeout.
// Only the first underscore becomes a section separator; the rest stay as
// key underscores.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// findConfigFile returns the first existing config file path, or empty.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
