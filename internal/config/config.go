// Package config loads server settings from environment variables and an
// optional config file.
//
// Environment variables:
//
//	PORT            HTTP listen port (default: 8080)
//	DB_PATH         SQLite database path (default: ./data/settlewise.db)
//	LOG_LEVEL       debug, info, warn, error (default: info)
//	REDIS_ADDR      enables the distributed commit lock when set
//	COMMIT_TIMEOUT  deadline for lock wait plus commit transaction (default: 5s)
//	LOCK_EXPIRY     auto-expiry of a held Redis lock (default: 10s)
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Port          int           `mapstructure:"port"`
	DBPath        string        `mapstructure:"db_path"`
	LogLevel      string        `mapstructure:"log_level"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	CommitTimeout time.Duration `mapstructure:"commit_timeout"`
	LockExpiry    time.Duration `mapstructure:"lock_expiry"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:          8080,
		DBPath:        "./data/settlewise.db",
		LogLevel:      "info",
		CommitTimeout: 5 * time.Second,
		LockExpiry:    10 * time.Second,
	}
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("port", d.Port)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("redis_addr", d.RedisAddr)
	v.SetDefault("commit_timeout", d.CommitTimeout)
	v.SetDefault("lock_expiry", d.LockExpiry)
	v.AutomaticEnv()
}

// Load reads the configuration from v, and from file when path is not empty.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.CommitTimeout <= 0 {
		return fmt.Errorf("commit_timeout must be positive, got %s", c.CommitTimeout)
	}
	if c.LockExpiry < c.CommitTimeout {
		return fmt.Errorf("lock_expiry (%s) must not be shorter than commit_timeout (%s)", c.LockExpiry, c.CommitTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}
