package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Durations use
// timex.Duration, so both "15m" and integer nanoseconds are accepted.
// Only fields present in the file override the defaults.
type FileConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	MetricsAddr                  string         `json:"metrics_addr" yaml:"metrics_addr"`
	DatabaseDriver               string         `json:"database_driver" yaml:"database_driver"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	RotateRefreshTokens          *bool          `json:"rotate_refresh_tokens" yaml:"rotate_refresh_tokens"`
	RefreshTokenStore            string         `json:"refresh_token_store" yaml:"refresh_token_store"`
	RedisAddr                    string         `json:"redis_addr" yaml:"redis_addr"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
	Password                     struct {
		MemoryKB    uint32 `json:"memory_kb" yaml:"memory_kb"`
		Time        uint32 `json:"time" yaml:"time"`
		Parallelism uint8  `json:"parallelism" yaml:"parallelism"`
	} `json:"password" yaml:"password"`
}

// parseFile overlays values from the config file named by -c/-config onto
// config. Files ending in .yaml or .yml are decoded as YAML, anything else
// as JSON. With no such flag nothing happens; an unreadable or invalid file
// panics, as the server cannot start on a half-applied config.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.RefreshTokenStore, c.RefreshTokenStore)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.RotateRefreshTokens != nil {
		config.RotateRefreshTokens = *c.RotateRefreshTokens
	}
	if c.Password.MemoryKB > 0 {
		config.PasswordMemoryKB = c.Password.MemoryKB
	}
	if c.Password.Time > 0 {
		config.PasswordTime = c.Password.Time
	}
	if c.Password.Parallelism > 0 {
		config.PasswordParallelism = c.Password.Parallelism
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
