package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/bakerykit/internal/flagx"
	"github.com/dmitrijs2005/bakerykit/internal/timex"
)

// fileConfig is the on-disk shape. Durations accept "15m" style strings or
// integer nanoseconds. Absent fields keep their current value.
type fileConfig struct {
	Address                      *string         `json:"address" toml:"address"`
	DatabaseDSN                  *string         `json:"database_dsn" toml:"database_dsn"`
	SecretKey                    *string         `json:"secret_key" toml:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration" toml:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration" toml:"refresh_token_validity_duration"`
	ChallengeValidityDuration    *timex.Duration `json:"challenge_validity_duration" toml:"challenge_validity_duration"`
	ResetCodeValidityDuration    *timex.Duration `json:"reset_code_validity_duration" toml:"reset_code_validity_duration"`
	TOTPIssuer                   *string         `json:"totp_issuer" toml:"totp_issuer"`
	LogLevel                     *string         `json:"log_level" toml:"log_level"`
}

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

	setString(&cfg.Address, fc.Address)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.SecretKey, fc.SecretKey)
	setDuration(&cfg.AccessTokenValidityDuration, fc.AccessTokenValidityDuration)
	setDuration(&cfg.RefreshTokenValidityDuration, fc.RefreshTokenValidityDuration)
	setDuration(&cfg.ChallengeValidityDuration, fc.ChallengeValidityDuration)
	setDuration(&cfg.ResetCodeValidityDuration, fc.ResetCodeValidityDuration)
	setString(&cfg.TOTPIssuer, fc.TOTPIssuer)
	setString(&cfg.LogLevel, fc.LogLevel)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
