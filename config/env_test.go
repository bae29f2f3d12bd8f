package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("GEO_TIMEOUT", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("JWT_SECRET", "")

	cfg := LoadConfig()
	if cfg.Store.Driver != "memory" {
		t.Fatalf("expected memory driver, got %q", cfg.Store.Driver)
	}
	if cfg.Geo.Timeout != 10*time.Second || cfg.Geo.MaxAge != time.Minute {
		t.Fatalf("unexpected geo defaults: %+v", cfg.Geo)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis should be disabled without REDIS_HOST")
	}
	if !cfg.Auth.DefaultSecret() {
		t.Fatalf("unset JWT_SECRET should report the built-in secret")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "bolt")
	t.Setenv("GEO_TIMEOUT", "3s")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("TELEGRAM_CHAT_IDS", "101, abc ,202")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("JWT_SECRET", "rotate-me")

	cfg := LoadConfig()
	if cfg.Store.Driver != "bolt" {
		t.Fatalf("expected bolt driver, got %q", cfg.Store.Driver)
	}
	if cfg.Geo.Timeout != 3*time.Second {
		t.Fatalf("expected 3s geo timeout, got %s", cfg.Geo.Timeout)
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Fatalf("invalid duration should fall back, got %s", cfg.Auth.SessionTTL)
	}
	if len(cfg.Telegram.ChatIDs) != 2 || cfg.Telegram.ChatIDs[1] != 202 {
		t.Fatalf("unexpected chat ids: %v", cfg.Telegram.ChatIDs)
	}
	if cfg.Redis.Addr() != "cache:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr())
	}
	if cfg.Auth.JWTSecret != "rotate-me" || cfg.Auth.DefaultSecret() {
		t.Fatalf("JWT_SECRET override not applied: %+v", cfg.Auth)
	}
}
