// Package config handles configuration for the backend server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the backend.
//
// Fields:
//   - Addr: bind address for the REST endpoint.
//   - AllowedOrigins: CORS origins allowed to call the API.
//   - SeedUsername / SeedPassword: account created at startup. An empty
//     username disables seeding. Do not use the defaults outside development.
//   - ShutdownTimeout: grace period for in-flight requests on stop.
//   - LogLevel / LogFormat: structured logging settings.
type Config struct {
	Addr            string
	AllowedOrigins  []string
	SeedUsername    string
	SeedPassword    string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.AllowedOrigins = []string{"*"}
	c.SeedUsername = "admin"
	c.SeedPassword = "admin"
	c.ShutdownTimeout = 5 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
