// Package config loads and validates the service configuration from a YAML
// file plus environment overrides.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/comfyrun/comfyrun/internal/platform/runpod"
)

// Config is the top-level service configuration.
type Config struct {
	// APIKey authenticates against the RunPod REST API. Usually supplied
	// via RUNPOD_API_KEY rather than the config file.
	APIKey string `mapstructure:"api_key"`
	// BaseURL overrides the provider endpoint, mainly for tests.
	BaseURL string `mapstructure:"base_url"`

	Server ServerConfig `mapstructure:"server"`
	Pods   PodsConfig   `mapstructure:"pods"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// PodsConfig configures pod provisioning defaults.
type PodsConfig struct {
	// Image is the container image new pods run.
	Image string `mapstructure:"image"`
	// GPUCatalogFile optionally overrides the built-in GPU price catalog.
	GPUCatalogFile string `mapstructure:"gpu_catalog_file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		BaseURL: runpod.DefaultBaseURL,
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8000,
			CORSOrigins: []string{"*"},
		},
	}
}

// Load builds the configuration: defaults, then the YAML file if path is
// non-empty, then environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
		}
		if err := mapstructure.Decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
//
// Environment Variables:
//   - RUNPOD_API_KEY
//   - RUNPOD_BASE_URL
//   - COMFYRUN_HOST
//   - COMFYRUN_PORT
func applyEnv(cfg *Config) {
	if v := os.Getenv("RUNPOD_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("RUNPOD_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("COMFYRUN_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("COMFYRUN_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required (set RUNPOD_API_KEY)")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Server.Host != "" {
		if ip := net.ParseIP(c.Server.Host); ip == nil && c.Server.Host != "localhost" {
			// Hostnames beyond localhost are resolved at bind time; only
			// reject the obviously malformed.
			for _, r := range c.Server.Host {
				if r == '/' || r == ' ' {
					return fmt.Errorf("invalid server host %q", c.Server.Host)
				}
			}
		}
	}
	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
