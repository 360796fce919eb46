package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Catalog.FetchTimeout != defaultFetchTimeout {
		t.Errorf("unexpected fetch timeout: %s", cfg.Catalog.FetchTimeout)
	}
	if cfg.Catalog.APIBaseURL != "" || cfg.Catalog.DatabaseDSN != "" {
		t.Errorf("expected demo catalogue by default, got %+v", cfg.Catalog)
	}
	if cfg.Taxonomy.CacheTTL != 5*time.Minute {
		t.Errorf("unexpected cache ttl: %s", cfg.Taxonomy.CacheTTL)
	}
	if cfg.Viewport.Breakpoint != 1024 {
		t.Errorf("unexpected breakpoint: %d", cfg.Viewport.Breakpoint)
	}
	if !cfg.IsLocal() {
		t.Errorf("expected local environment, got %s", cfg.Environment)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"STOREFRONT_ENV":                   "Production",
		"STOREFRONT_SERVER_PORT":           "9090",
		"STOREFRONT_SERVER_READ_TIMEOUT":   "20s",
		"STOREFRONT_SERVER_WRITE_TIMEOUT":  "25s",
		"STOREFRONT_SERVER_IDLE_TIMEOUT":   "2m",
		"STOREFRONT_CATALOG_API_BASE_URL":  "https://shop.example.com/",
		"STOREFRONT_CATALOG_FETCH_TIMEOUT": "3s",
		"STOREFRONT_DATABASE_DSN":          "postgres://shop@db/shop",
		"STOREFRONT_TAXONOMY_FILE":         "taxonomy.yaml",
		"STOREFRONT_TAXONOMY_CACHE_TTL":    "0s",
		"STOREFRONT_REDIS_URL":             "redis://cache:6379/0",
		"STOREFRONT_VIEWPORT_BREAKPOINT":   "768",
	}

	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Environment != "production" || cfg.IsLocal() {
		t.Errorf("unexpected environment %q", cfg.Environment)
	}
	if cfg.Server.Port != "9090" || cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Catalog.APIBaseURL != "https://shop.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Catalog.APIBaseURL)
	}
	if cfg.Catalog.FetchTimeout != 3*time.Second {
		t.Errorf("unexpected fetch timeout: %s", cfg.Catalog.FetchTimeout)
	}
	if cfg.Catalog.DatabaseDSN != "postgres://shop@db/shop" {
		t.Errorf("unexpected dsn: %s", cfg.Catalog.DatabaseDSN)
	}
	if cfg.Taxonomy.File != "taxonomy.yaml" || cfg.Taxonomy.CacheTTL != 0 || cfg.Taxonomy.RedisURL != "redis://cache:6379/0" {
		t.Errorf("unexpected taxonomy config: %+v", cfg.Taxonomy)
	}
	if cfg.Viewport.Breakpoint != 768 {
		t.Errorf("unexpected breakpoint: %d", cfg.Viewport.Breakpoint)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "# local overrides\nexport STOREFRONT_SERVER_PORT=7070\nSTOREFRONT_TAXONOMY_FILE=\"menu.yaml\"\nSTOREFRONT_VIEWPORT_BREAKPOINT=900\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("STOREFRONT_VIEWPORT_BREAKPOINT", "800")

	cfg, err := Load(WithEnvFile(envFile), WithEnvMap(map[string]string{"STOREFRONT_SERVER_PORT": "6060"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "6060" {
		t.Errorf("explicit map should win, got %s", cfg.Server.Port)
	}
	if cfg.Viewport.Breakpoint != 800 {
		t.Errorf("system env should beat .env, got %d", cfg.Viewport.Breakpoint)
	}
	if cfg.Taxonomy.File != "menu.yaml" {
		t.Errorf(".env value should apply with quotes trimmed, got %s", cfg.Taxonomy.File)
	}
}

func TestLoadValidation(t *testing.T) {
	env := map[string]string{
		"STOREFRONT_SERVER_PORT":          "http",
		"STOREFRONT_SERVER_READ_TIMEOUT":  "soon",
		"STOREFRONT_CATALOG_API_BASE_URL": "ftp://catalogue",
		"STOREFRONT_VIEWPORT_BREAKPOINT":  "-1",
	}

	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	want := map[string]bool{
		"STOREFRONT_SERVER_READ_TIMEOUT": true,
		"Server.Port":                    true,
		"Catalog.APIBaseURL":             true,
		"Viewport.Breakpoint":            true,
	}
	fields := vErr.Fields()
	if len(fields) != len(want) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected invalid field %s", f)
		}
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	values, err := loadDotEnv(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
	if values != nil {
		t.Fatalf("expected nil values, got %v", values)
	}
}
