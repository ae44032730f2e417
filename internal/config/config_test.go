// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, defaults, env var expansion, validation and saving

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "studio.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: "s3"
  path: "./library.db"
  s3:
    bucket: "fitcheck-assets"
    endpoint: "http://localhost:9000"
    path_style: true
    prefix: "studio/"

registry:
  max_transient: 4
  optimize_grace: "30m"

generation:
  endpoint: "http://localhost:8787/generate"
  api_key: "key-123"
  timeout: "2m"

catalog:
  path: "./wardrobe.toml"

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  addr: ":9464"
`)

	cfg, err := Load(path, "/data")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Driver != DriverS3 {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverS3)
	}
	if cfg.Storage.S3.Bucket != "fitcheck-assets" {
		t.Errorf("Storage.S3.Bucket = %q, want %q", cfg.Storage.S3.Bucket, "fitcheck-assets")
	}
	if !cfg.Storage.S3.PathStyle {
		t.Error("Storage.S3.PathStyle = false, want true")
	}
	if cfg.Storage.S3.Region != "us-east-1" {
		t.Errorf("Storage.S3.Region = %q, want default us-east-1", cfg.Storage.S3.Region)
	}
	if cfg.Registry.MaxTransient != 4 {
		t.Errorf("Registry.MaxTransient = %d, want 4", cfg.Registry.MaxTransient)
	}
	if cfg.Registry.OptimizeGrace != 30*time.Minute {
		t.Errorf("Registry.OptimizeGrace = %v, want %v", cfg.Registry.OptimizeGrace, 30*time.Minute)
	}
	if cfg.Generation.Timeout != 2*time.Minute {
		t.Errorf("Generation.Timeout = %v, want %v", cfg.Generation.Timeout, 2*time.Minute)
	}
	if cfg.Generation.Model != "gemini-2.5-flash-image" {
		t.Errorf("Generation.Model = %q, want default", cfg.Generation.Model)
	}
	if cfg.Catalog.Path != "./wardrobe.toml" {
		t.Errorf("Catalog.Path = %q, want %q", cfg.Catalog.Path, "./wardrobe.toml")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want default /metrics", cfg.Metrics.Path)
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path, "/data")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default("/data")
	if cfg.Storage.Path != want.Storage.Path {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, want.Storage.Path)
	}
	if cfg.Registry.MaxTransient != 10 {
		t.Errorf("Registry.MaxTransient = %d, want 10", cfg.Registry.MaxTransient)
	}
	if cfg.Generation.Timeout != 90*time.Second {
		t.Errorf("Generation.Timeout = %v, want 90s", cfg.Generation.Timeout)
	}
	if cfg.Registry.OptimizeGrace != 24*time.Hour {
		t.Errorf("Registry.OptimizeGrace = %v, want 24h", cfg.Registry.OptimizeGrace)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("FITCHECK_TEST_KEY", "secret-from-env")
	path := writeConfig(t, `
generation:
  api_key: "${FITCHECK_TEST_KEY}"
  endpoint: "${FITCHECK_TEST_UNSET}"
`)

	cfg, err := Load(path, "/data")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Generation.APIKey != "secret-from-env" {
		t.Errorf("Generation.APIKey = %q, want %q", cfg.Generation.APIKey, "secret-from-env")
	}
	if cfg.Generation.Endpoint != "" {
		t.Errorf("Generation.Endpoint = %q, want empty", cfg.Generation.Endpoint)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
generation:
  timeout: "soon"
`)

	_, err := Load(path, "/data")
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("Load() error = %v, want timeout parse error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "/data")
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"memory driver", func(c *Config) { c.Storage.Driver = DriverMemory; c.Storage.Path = "" }, ""},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "redis" }, "storage.driver"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = DriverS3 }, "storage.s3.bucket"},
		{"zero pool", func(c *Config) { c.Registry.MaxTransient = 0 }, "max_transient"},
		{"negative optimize grace", func(c *Config) { c.Registry.OptimizeGrace = -time.Minute }, "optimize_grace"},
		{"zero optimize grace", func(c *Config) { c.Registry.OptimizeGrace = 0 }, ""},
		{"zero timeout", func(c *Config) { c.Generation.Timeout = 0 }, "timeout"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"metrics without addr", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }, "metrics.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/data")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSave_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studio.yaml")

	cfg := Default("/data")
	cfg.Generation.Timeout = 45 * time.Second
	cfg.Registry.OptimizeGrace = 0
	cfg.Catalog.Path = "/catalog.yaml"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("saved config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path, "/other")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Generation.Timeout != 45*time.Second {
		t.Errorf("Generation.Timeout = %v, want 45s", loaded.Generation.Timeout)
	}
	if loaded.Registry.OptimizeGrace != 0 {
		t.Errorf("Registry.OptimizeGrace = %v, want 0", loaded.Registry.OptimizeGrace)
	}
	if loaded.Storage.Path != cfg.Storage.Path {
		t.Errorf("Storage.Path = %q, want %q", loaded.Storage.Path, cfg.Storage.Path)
	}
	if loaded.Catalog.Path != "/catalog.yaml" {
		t.Errorf("Catalog.Path = %q, want %q", loaded.Catalog.Path, "/catalog.yaml")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("FITCHECK_CONFIG", "/etc/fitcheck.yaml")
	if got := DefaultPath(); got != "/etc/fitcheck.yaml" {
		t.Errorf("DefaultPath() = %q, want FITCHECK_CONFIG value", got)
	}

	t.Setenv("FITCHECK_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultPath(); got != filepath.Join("/xdg", "fitcheck", "studio.yaml") {
		t.Errorf("DefaultPath() = %q, want XDG path", got)
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg-data")
	if got := DataDir(); got != filepath.Join("/xdg-data", "fitcheck") {
		t.Errorf("DataDir() = %q, want XDG data path", got)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "none.yaml"), "/data")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
}
