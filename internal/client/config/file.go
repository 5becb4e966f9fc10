package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/bakerykit/internal/flagx"
	"github.com/dmitrijs2005/bakerykit/internal/timex"
)

// fileConfig is the on-disk shape. Pointer fields distinguish "absent" from
// zero so a file only overrides what it names.
type fileConfig struct {
	BackendURL        *string         `json:"backend_url" toml:"backend_url"`
	DatabasePath      *string         `json:"database_path" toml:"database_path"`
	RequestTimeout    *timex.Duration `json:"request_timeout" toml:"request_timeout"`
	RefreshLeeway     *timex.Duration `json:"refresh_leeway" toml:"refresh_leeway"`
	CartPollInterval  *timex.Duration `json:"cart_poll_interval" toml:"cart_poll_interval"`
	RequestsPerSecond *float64        `json:"requests_per_second" toml:"requests_per_second"`
	DeviceSecret      *string         `json:"device_secret" toml:"device_secret"`
	LogLevel          *string         `json:"log_level" toml:"log_level"`
}

// parseFile overlays cfg with the file named by -c/-config in args. No flag
// means no file and no changes.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	if fc.BackendURL != nil {
		cfg.BackendURL = *fc.BackendURL
	}
	if fc.DatabasePath != nil {
		cfg.DatabasePath = *fc.DatabasePath
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RefreshLeeway != nil {
		cfg.RefreshLeeway = fc.RefreshLeeway.Duration
	}
	if fc.CartPollInterval != nil {
		cfg.CartPollInterval = fc.CartPollInterval.Duration
	}
	if fc.RequestsPerSecond != nil {
		cfg.RequestsPerSecond = *fc.RequestsPerSecond
	}
	if fc.DeviceSecret != nil {
		cfg.DeviceSecret = *fc.DeviceSecret
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
}
