package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the session core.
//
// DeviceSecret, when non-empty, turns on at-rest sealing of stored
// credentials. RequestsPerSecond <= 0 disables outbound rate limiting.
type Config struct {
	BackendURL        string
	DatabasePath      string
	RequestTimeout    time.Duration
	RefreshLeeway     time.Duration
	CartPollInterval  time.Duration
	RequestsPerSecond float64
	DeviceSecret      string
	LogLevel          string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:8080"
	c.DatabasePath = "session.db"
	c.RequestTimeout = 10 * time.Second
	c.RefreshLeeway = 30 * time.Second
	c.CartPollInterval = 15 * time.Second
	c.RequestsPerSecond = 0
	c.DeviceSecret = ""
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, the optional config file and
// command-line flags found in os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
