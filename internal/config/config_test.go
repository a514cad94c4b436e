package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HTTP_ADDR", "METRICS_ADDR", "CATALOG_PATH", "SEED_DATA", "SESSION_LIFETIME", "SESSION_COOKIE_SECURE", "RULES_PER_PAGE"} {
		t.Setenv(key, "")
	}
}

func TestLoadWithOptions_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithOptions(LoadOptions{SkipDotEnv: true})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.HTTPAddr != defaultHTTPAddr {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, defaultHTTPAddr)
	}
	if !cfg.SeedData {
		t.Fatal("SeedData = false, want true")
	}
	if cfg.SessionLifetime != defaultSessionLifetime {
		t.Fatalf("SessionLifetime = %s, want %s", cfg.SessionLifetime, defaultSessionLifetime)
	}
	if cfg.RulesPerPage != defaultRulesPerPage {
		t.Fatalf("RulesPerPage = %d, want %d", cfg.RulesPerPage, defaultRulesPerPage)
	}
	if !cfg.MetricsEnabled() {
		t.Fatal("MetricsEnabled() = false, want true")
	}
}

func TestLoadWithOptions_ParsesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEED_DATA", "0")
	t.Setenv("SESSION_LIFETIME", "90m")
	t.Setenv("SESSION_COOKIE_SECURE", "1")
	t.Setenv("RULES_PER_PAGE", "5")
	t.Setenv("METRICS_ADDR", "off")

	cfg, err := LoadWithOptions(LoadOptions{SkipDotEnv: true})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.SeedData || !cfg.SessionCookieSecure {
		t.Fatalf("SeedData = %v, SessionCookieSecure = %v", cfg.SeedData, cfg.SessionCookieSecure)
	}
	if cfg.SessionLifetime != 90*time.Minute {
		t.Fatalf("SessionLifetime = %s, want 1h30m0s", cfg.SessionLifetime)
	}
	if cfg.RulesPerPage != 5 {
		t.Fatalf("RulesPerPage = %d, want 5", cfg.RulesPerPage)
	}
	if cfg.MetricsEnabled() {
		t.Fatal("MetricsEnabled() = true, want false")
	}
}

func TestLoadWithOptions_IgnoresInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_LIFETIME", "soon")
	t.Setenv("RULES_PER_PAGE", "-2")
	t.Setenv("SEED_DATA", "yes")

	cfg, err := LoadWithOptions(LoadOptions{SkipDotEnv: true})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.SessionLifetime != defaultSessionLifetime || cfg.RulesPerPage != defaultRulesPerPage || !cfg.SeedData {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadWithOptions_CatalogPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("departments: []\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("CATALOG_PATH", path)
	cfg, err := LoadWithOptions(LoadOptions{SkipDotEnv: true})
	if err != nil {
		t.Fatalf("LoadWithOptions() error = %v", err)
	}
	if cfg.CatalogPath != path {
		t.Fatalf("CatalogPath = %q, want %q", cfg.CatalogPath, path)
	}

	t.Setenv("CATALOG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadWithOptions(LoadOptions{SkipDotEnv: true}); err == nil {
		t.Fatal("expected error for missing CATALOG_PATH")
	}
}
