package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
base_url = "https://p31-ckdatabasews.example.com/"
timezone = "America/New_York"
cookie = "X-APPLE-WEBAUTH-TOKEN=abc"

[query]
ckAPIToken = "token123"
clientBuildNumber = "2310"

[headers]
Origin = "https://www.example.com"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.BaseURL != "https://p31-ckdatabasews.example.com" {
		t.Fatalf("unexpected base url: %q", cfg.BaseURL)
	}
	if cfg.Timezone != "America/New_York" {
		t.Fatalf("unexpected timezone: %q", cfg.Timezone)
	}
	if got := cfg.Query.Get("ckAPIToken"); got != "token123" {
		t.Fatalf("unexpected ckAPIToken: %q", got)
	}
	if got := cfg.Query.Get("clientBuildNumber"); got != "2310" {
		t.Fatalf("unexpected clientBuildNumber: %q", got)
	}
	if got := cfg.Headers.Get("Origin"); got != "https://www.example.com" {
		t.Fatalf("unexpected Origin header: %q", got)
	}
	if got := cfg.Headers.Get("Cookie"); got != "X-APPLE-WEBAUTH-TOKEN=abc" {
		t.Fatalf("unexpected cookie: %q", got)
	}
}

func TestLoadConfigRequiresBaseURL(t *testing.T) {
	path := writeConfig(t, `timezone = "UTC"`)
	if _, err := loadConfig(path); err == nil {
		t.Fatal("expected error for missing base_url")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigOmittedSectionsStayEmpty(t *testing.T) {
	path := writeConfig(t, `base_url = "https://example.com"`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Timezone != "" {
		t.Fatalf("expected empty timezone, got %q", cfg.Timezone)
	}
	if len(cfg.Query) != 0 || len(cfg.Headers) != 0 {
		t.Fatalf("expected empty query/headers, got %v / %v", cfg.Query, cfg.Headers)
	}
}
