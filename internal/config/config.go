// Package config loads netcall settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/adeilh/go-netcall/httpx"
)

var (
	ErrInvalidBaseURL   = errors.New("config: base URL must be an absolute http(s) URL")
	ErrInvalidHTTPLog   = errors.New("config: http log must be one of none, basic, headers, body")
	ErrInvalidBackend   = errors.New("config: cache backend must be one of memory, redis, postgres")
	ErrMissingCacheAddr = errors.New("config: cache backend requires its address")
)

const (
	BackendNone     = ""
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds every NETCALL_* setting.
type Config struct {
	BaseURL  string         `env:"BASE_URL,required"`
	Timeout  time.Duration  `env:"TIMEOUT" envDefault:"10s"`
	LogLevel string         `env:"LOG_LEVEL" envDefault:"info"`
	HTTPLog  string         `env:"HTTP_LOG" envDefault:"basic"`
	Collapse bool           `env:"COLLAPSE" envDefault:"true"`
	Cache    CacheConfig    `envPrefix:"CACHE_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
}

type CacheConfig struct {
	Backend string        `env:"BACKEND"`
	TTL     time.Duration `env:"TTL" envDefault:"0s"`
	Refresh time.Duration `env:"REFRESH" envDefault:"1h"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type PostgresConfig struct {
	DSN string `env:"DSN"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "NETCALL_"}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if _, ok := httpx.ParseLogLevel(c.HTTPLog); !ok {
		return ErrInvalidHTTPLog
	}
	switch c.Cache.Backend {
	case BackendNone, BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: NETCALL_REDIS_ADDR", ErrMissingCacheAddr)
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("%w: NETCALL_POSTGRES_DSN", ErrMissingCacheAddr)
		}
	default:
		return ErrInvalidBackend
	}
	return nil
}

// HTTPLogLevel returns the parsed HTTPLog setting.
func (c *Config) HTTPLogLevel() httpx.LogLevel {
	lvl, _ := httpx.ParseLogLevel(c.HTTPLog)
	return lvl
}
