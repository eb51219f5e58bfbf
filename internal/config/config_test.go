package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "careerboard")
	t.Setenv("APP_ENV", "development")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, key := range []string{"APP_NAME", "APP_ENV", "HTTP_PORT", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in error, got %v", key, err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Store.Driver != "dynamo" {
		t.Fatalf("expected dynamo driver, got %q", cfg.Store.Driver)
	}
	if cfg.Store.JobsTable != "Jobs" {
		t.Fatalf("unexpected jobs table %q", cfg.Store.JobsTable)
	}
	if cfg.Logo.Timeout != 5*time.Second {
		t.Fatalf("unexpected logo timeout %s", cfg.Logo.Timeout)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Fatalf("unexpected ai timeout %s", cfg.AI.Timeout)
	}
	if !cfg.App.IsDevelopment() {
		t.Fatalf("expected development mode")
	}
	if cfg.Database.Enabled() {
		t.Fatalf("expected database disabled without DB_HOST")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("LOGO_TIMEOUT", "soon")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "LOGO_TIMEOUT") {
		t.Fatalf("expected LOGO_TIMEOUT error, got %v", err)
	}
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "mongo")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
