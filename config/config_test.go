package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ErlanBelekov/diary-service/config"
)

const testSecret = "config-test-secret-at-least-32-chars"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE", "memory")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "3001" {
		t.Errorf("Port = %q, want 3001", cfg.Port)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.CookieMaxAge != 7*24*time.Hour {
		t.Errorf("CookieMaxAge = %v, want 168h", cfg.CookieMaxAge)
	}
	if cfg.ImportMaxBytes != 5<<20 {
		t.Errorf("ImportMaxBytes = %d, want 5 MiB", cfg.ImportMaxBytes)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel = %v, want info", cfg.SlogLevel())
	}
	if cfg.SecureCookies() {
		t.Error("local env must not force Secure cookies")
	}
}

func TestLoad_PostgresNeedsDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")
	t.Setenv("STORAGE", "memory")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for short JWT_SECRET")
	}
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE", "memory")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173,https://diary.example.com")
	t.Setenv("ENV", "production")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://diary.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if !cfg.SecureCookies() {
		t.Error("production must use Secure cookies")
	}
}
