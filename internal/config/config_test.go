package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_DSN", "DB_HOST", "MIGRATIONS", "SESSION_TTL", "LOG_FILE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %s", cfg.Server.Port)
	}
	if !cfg.App.Migrations {
		t.Fatalf("migrations should default to true")
	}
	if cfg.Auth.SessionTTL != 14*24*time.Hour {
		t.Fatalf("session ttl = %s", cfg.Auth.SessionTTL)
	}
	if got := cfg.Database.DSN(); !strings.Contains(got, "host=localhost") || !strings.Contains(got, "sslmode=disable") {
		t.Fatalf("unexpected dsn %q", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SQL_MIGRATIONS", "yes")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("DATABASE_DSN", "host=db user=app password=pw dbname=garden")
	cfg := Load()
	if cfg.Server.Port != "9090" || !cfg.App.SQLMigrations || cfg.Auth.SessionTTL != 2*time.Hour {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if got := cfg.Database.DSN(); got != "host=db user=app password=pw dbname=garden sslmode=disable" {
		t.Fatalf("dsn = %q", got)
	}
	if got := cfg.Database.URL(); got != "postgres://app:pw@db/garden?sslmode=disable" {
		t.Fatalf("url = %q", got)
	}
}

func TestNormalizeDSN(t *testing.T) {
	cases := map[string]string{
		"":                               "",
		"  'postgres://u:p@h/db'  ":      "postgres://u:p@h/db",
		"host=h   user=u dbname=d":       "host=h user=u dbname=d sslmode=disable",
		"host=h user=u sslmode=require":  "host=h user=u sslmode=require",
		"not a dsn":                      "not a dsn",
	}
	for in, want := range cases {
		if got := NormalizeDSN(in); got != want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToURLDSNMissingParts(t *testing.T) {
	in := "host=h dbname=d"
	if got := ToURLDSN(in); got != in {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestMaskDSN(t *testing.T) {
	if got := MaskDSN("host=h password=secret dbname=d"); strings.Contains(got, "secret") {
		t.Fatalf("password leaked: %q", got)
	}
	if got := MaskDSN("postgres://u:secret@h/db"); strings.Contains(got, "secret") {
		t.Fatalf("password leaked: %q", got)
	}
}

func TestCheckSessionSecret(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{SessionSecret: DevSessionSecret}}
	if err := cfg.CheckSessionSecret(); err == nil {
		t.Fatal("default secret accepted outside dev mode")
	}
	cfg.Auth.SessionSecret = "  "
	if err := cfg.CheckSessionSecret(); err == nil {
		t.Fatal("blank secret accepted outside dev mode")
	}
	cfg.App.Dev = true
	if err := cfg.CheckSessionSecret(); err != nil {
		t.Fatalf("dev mode: %v", err)
	}
	cfg.App.Dev = false
	cfg.Auth.SessionSecret = "f3a9c1d27be4"
	if err := cfg.CheckSessionSecret(); err != nil {
		t.Fatalf("private secret: %v", err)
	}
}
