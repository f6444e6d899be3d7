package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("expected 30m token TTL, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 12 {
		t.Errorf("expected bcrypt cost 12, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("expected postgres driver, got %q", cfg.Database.Driver)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("expected redis disabled by default, got %q", cfg.Redis.Addr)
	}
	if cfg.Redis.IdempotencyTTL != 24*time.Hour {
		t.Errorf("expected 24h idempotency TTL, got %s", cfg.Redis.IdempotencyTTL)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development environment by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      "s3cret",
		"TOKEN_TTL":       "10h",
		"DB_DRIVER":       "sqlite3",
		"DB_DSN":          "file:board.db",
		"REDIS_ADDR":      "redis:6379",
		"IDEMPOTENCY_TTL": "1h",
		"ENV":             "production",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Auth.TokenTTL != 10*time.Hour {
		t.Errorf("expected 10h, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.DSN != "file:board.db" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.IdempotencyTTL != time.Hour {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production environment")
	}
}

func TestLoadFrom_RequiresSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err == nil {
		t.Fatal("expected error when JWT_SECRET is missing")
	}
}

func TestLoadFrom_RejectsUnknownDriver(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"DB_DRIVER":  "oracle",
	}))
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadFrom_RejectsNonPositiveTTL(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"TOKEN_TTL":  "0s",
	}))
	if err == nil {
		t.Fatal("expected error for zero TTL")
	}
}
