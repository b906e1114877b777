package config

import "time"

// Config holds runtime settings for the taxvault CLI.
//
// Fields:
//   - ServerURL: base URL of the taxvault REST API.
//   - AccessToken: bearer token; the CLI prompts for one when empty.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerURL      string
	AccessToken    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.AccessToken = ""
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
