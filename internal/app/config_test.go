package app

import (
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg, err := parseConfig()
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port: want=8080 got=%q", cfg.Port)
	}
	if cfg.CatalogTTL != 5*time.Minute || cfg.RequestLockTTL != 10*time.Second {
		t.Fatalf("ttls: catalog=%s lock=%s", cfg.CatalogTTL, cfg.RequestLockTTL)
	}
	if cfg.EventsChannel != "production-events" {
		t.Fatalf("events channel: got=%q", cfg.EventsChannel)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.example.com, ,https://admin.example.com")
	cfg, err := parseConfig()
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("driver: want=sqlite got=%q", cfg.DBDriver)
	}
	if cfg.CatalogTTL != 30*time.Second || cfg.RedisDB != 3 {
		t.Fatalf("overrides: ttl=%s db=%d", cfg.CatalogTTL, cfg.RedisDB)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("origins: got=%v", cfg.CORSAllowedOrigins)
	}
}

func TestParseConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("REQUEST_LOCK_TTL", "soon")
	if _, err := parseConfig(); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}
