package config

import (
	"os"
	"time"
)

// Timeouts holds all configurable interval and timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	SetupTimeout time.Duration // Ceiling on pod setup before it is failed
	PollInterval time.Duration // Setup monitor polling cadence
	CostInterval time.Duration // Cost refresh loop cadence
	ProbeTimeout time.Duration // Single endpoint readiness probe bound
	HTTPShutdown time.Duration // Graceful HTTP server shutdown bound
}

// LoadTimeouts loads interval configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - COMFYRUN_SETUP_TIMEOUT (default: 15m)
//   - COMFYRUN_POLL_INTERVAL (default: 5s)
//   - COMFYRUN_COST_INTERVAL (default: 60s)
//   - COMFYRUN_PROBE_TIMEOUT (default: 10s)
//   - COMFYRUN_HTTP_SHUTDOWN (default: 10s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		SetupTimeout: parseDuration("COMFYRUN_SETUP_TIMEOUT", 15*time.Minute),
		PollInterval: parseDuration("COMFYRUN_POLL_INTERVAL", 5*time.Second),
		CostInterval: parseDuration("COMFYRUN_COST_INTERVAL", 60*time.Second),
		ProbeTimeout: parseDuration("COMFYRUN_PROBE_TIMEOUT", 10*time.Second),
		HTTPShutdown: parseDuration("COMFYRUN_HTTP_SHUTDOWN", 10*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
