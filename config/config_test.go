package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "estateops.yml")
	body := `
http:
  addr: ":9090"
database:
  url: "postgres://file@localhost/estateops"
  max_conns: 4
auth:
  jwt_secret: "file-secret"
  token_ttl: 1h
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://env@localhost/estateops")
	t.Setenv("ESTATEOPS_ADDR", "")
	t.Setenv("ESTATEOPS_JWT_SECRET", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("expected addr from file, got %q", cfg.HTTP.Addr)
	}
	if cfg.Database.URL != "postgres://env@localhost/estateops" {
		t.Fatalf("expected env override for database url, got %q", cfg.Database.URL)
	}
	if cfg.Database.MaxConns != 4 {
		t.Fatalf("expected max_conns 4, got %d", cfg.Database.MaxConns)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("expected token ttl 1h, got %s", cfg.Auth.TokenTTL)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ESTATEOPS_JWT_SECRET", "secret")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error when database url missing")
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env@localhost/estateops")
	t.Setenv("ESTATEOPS_JWT_SECRET", "secret")
	t.Setenv("ESTATEOPS_ADDR", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.HTTP.Addr)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("expected default token ttl, got %s", cfg.Auth.TokenTTL)
	}
}
