package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Test defaults
	os.Clearenv()
	cfg := Load()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected default HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.Environment != "development" {
		t.Errorf("Expected default Environment development, got %s", cfg.Environment)
	}
	if cfg.Database.Host != "localhost" || cfg.Database.Port != "5432" {
		t.Errorf("Expected default database localhost:5432, got %s:%s", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Redis.Host != "localhost" || cfg.Redis.Port != 6379 {
		t.Errorf("Expected default redis localhost:6379, got %s:%d", cfg.Redis.Host, cfg.Redis.Port)
	}

	// Test overrides
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "heartlink_test")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("LOG_LEVEL", "debug")

	cfg = Load()

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("Expected HTTPAddr :9090, got %s", cfg.HTTPAddr)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Expected Database.Host db.internal, got %s", cfg.Database.Host)
	}
	if cfg.Database.DBName != "heartlink_test" {
		t.Errorf("Expected Database.DBName heartlink_test, got %s", cfg.Database.DBName)
	}
	if cfg.Redis.Host != "cache.internal" {
		t.Errorf("Expected Redis.Host cache.internal, got %s", cfg.Redis.Host)
	}
	if string(cfg.Log.Level) != "debug" {
		t.Errorf("Expected Log.Level debug, got %s", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	os.Clearenv()
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected development config to validate, got %v", err)
	}

	cfg.Environment = "production"
	cfg.Database.Password = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected production config without DB_PASSWORD to fail validation")
	}

	cfg.Database.Password = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected production config with password to validate, got %v", err)
	}
}

func TestIsDevelopment(t *testing.T) {
	for env, want := range map[string]bool{
		"development": true,
		"dev":         true,
		"production":  false,
		"staging":     false,
	} {
		cfg := Config{Environment: env}
		if cfg.IsDevelopment() != want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", env, !want, want)
		}
	}
}
