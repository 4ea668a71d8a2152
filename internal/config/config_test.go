package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adeilh/go-netcall/httpx"
)

func TestLoadDefaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("NETCALL_BASE_URL", "https://api.example.com")

	cfg, err := Load()
	req.NoError(err)
	req.Equal("https://api.example.com", cfg.BaseURL)
	req.Equal(10*time.Second, cfg.Timeout)
	req.Equal("info", cfg.LogLevel)
	req.Equal(httpx.LogBasic, cfg.HTTPLogLevel())
	req.True(cfg.Collapse)
	req.Equal(BackendNone, cfg.Cache.Backend)
	req.Equal(time.Hour, cfg.Cache.Refresh)
	req.Zero(cfg.Cache.TTL)
}

func TestLoadOverrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("NETCALL_BASE_URL", "http://localhost:8080")
	t.Setenv("NETCALL_TIMEOUT", "2s")
	t.Setenv("NETCALL_HTTP_LOG", "body")
	t.Setenv("NETCALL_COLLAPSE", "false")
	t.Setenv("NETCALL_CACHE_BACKEND", "redis")
	t.Setenv("NETCALL_CACHE_TTL", "5m")
	t.Setenv("NETCALL_REDIS_ADDR", "127.0.0.1:6379")
	t.Setenv("NETCALL_REDIS_DB", "3")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(2*time.Second, cfg.Timeout)
	req.Equal(httpx.LogBody, cfg.HTTPLogLevel())
	req.False(cfg.Collapse)
	req.Equal(BackendRedis, cfg.Cache.Backend)
	req.Equal(5*time.Minute, cfg.Cache.TTL)
	req.Equal("127.0.0.1:6379", cfg.Redis.Addr)
	req.Equal(3, cfg.Redis.DB)
}

func TestLoadRequiresBaseURL(t *testing.T) {
	req := require.New(t)
	t.Setenv("NETCALL_BASE_URL", "")

	_, err := Load()
	req.Error(err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{BaseURL: "https://api.example.com", HTTPLog: "basic"}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"relative url", func(c *Config) { c.BaseURL = "/api" }, ErrInvalidBaseURL},
		{"ftp url", func(c *Config) { c.BaseURL = "ftp://example.com" }, ErrInvalidBaseURL},
		{"bad http log", func(c *Config) { c.HTTPLog = "verbose" }, ErrInvalidHTTPLog},
		{"bad backend", func(c *Config) { c.Cache.Backend = "memcached" }, ErrInvalidBackend},
		{"redis without addr", func(c *Config) { c.Cache.Backend = BackendRedis }, ErrMissingCacheAddr},
		{"postgres without dsn", func(c *Config) { c.Cache.Backend = BackendPostgres }, ErrMissingCacheAddr},
		{"memory", func(c *Config) { c.Cache.Backend = BackendMemory }, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}
