package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_REDIS_ENABLED", "")
	t.Setenv("REDIS_ENABLED", "")
	t.Setenv("CATALOG_SOURCE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected request timeout: %v", cfg.Server.RequestTimeout)
	}
	if cfg.Catalog.Source != "data/catalog_v1.json" || cfg.Catalog.Version != "v1" {
		t.Fatalf("unexpected catalog config: %+v", cfg.Catalog)
	}
	if cfg.Catalog.MaxAlternatives != 3 {
		t.Fatalf("expected 3 alternatives by default, got %d", cfg.Catalog.MaxAlternatives)
	}
	if !cfg.Cache.Enabled || cfg.Cache.MaxSize != 1000 {
		t.Fatalf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Redis.Enabled {
		t.Fatal("redis must be disabled by default")
	}
	if cfg.DedupWindow != time.Second {
		t.Fatalf("unexpected dedup window: %v", cfg.DedupWindow)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "https://cdn.example.com/catalog.json")
	t.Setenv("APP_CATALOG_VERSION", "v2")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_CATALOG_MAX_ALTERNATIVES", "5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Catalog.Source != "https://cdn.example.com/catalog.json" || cfg.Catalog.Version != "v2" {
		t.Fatalf("catalog env not applied: %+v", cfg.Catalog)
	}
	if cfg.Catalog.MaxAlternatives != 5 {
		t.Fatalf("expected max alternatives from env, got %d", cfg.Catalog.MaxAlternatives)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("redis env not applied: %+v", cfg.Redis)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Fatalf("expected 30s window, got %v", cfg.RateLimit.Window)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug log level, got %s", cfg.LogLevel)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080, RequestTimeout: time.Second, MaxBodyBytes: 1024},
			Catalog: CatalogConfig{Source: "catalog.json"},
		}
	}

	if err := validateConfig(valid()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*Config){
		"missing port":       func(c *Config) { c.Server.Port = 0 },
		"missing source":     func(c *Config) { c.Catalog.Source = "  " },
		"bad cache":          func(c *Config) { c.Cache = CacheConfig{Enabled: true} },
		"redis without addr": func(c *Config) { c.Redis = RedisConfig{Enabled: true} },
		"bad rate limit":     func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true} },
		"no request timeout": func(c *Config) { c.Server.RequestTimeout = 0 },
		"negative alts":      func(c *Config) { c.Catalog.MaxAlternatives = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
