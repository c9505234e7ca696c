package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/skilltree/internal/logging"
)

// CacheConfig selects the curriculum-sequence cache.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig holds connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Config holds all runtime configuration.
// Values are populated from .skilltree.yaml, SKILLTREE_* env vars, and CLI flags.
type Config struct {
	DB       string      `mapstructure:"db"`
	Listen   string      `mapstructure:"listen"`
	LogLevel string      `mapstructure:"log_level"`
	Cache    CacheConfig `mapstructure:"cache"`
	Redis    RedisConfig `mapstructure:"redis"`
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("db", "")
	viper.SetDefault("listen", ":8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("cache.backend", CacheMemory)
	viper.SetDefault("cache.ttl", time.Hour)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "skilltree:seq:")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (want memory, redis or none)", c.Cache.Backend)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl: must not be negative")
	}
	return nil
}
