package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config fixture failed: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Engine.Port != DefaultEnginePort {
		t.Errorf("Port = %d, want %d", cfg.Engine.Port, DefaultEnginePort)
	}
	if cfg.Retention.DaysStale != 180 || cfg.Retention.MinSizeMB != 1.0 {
		t.Errorf("unexpected retention defaults: %+v", cfg.Retention)
	}
	if cfg.Retention.IncludePublished {
		t.Error("IncludePublished should default to false")
	}
	if cfg.Engine.DialTimeout != 10*time.Second || cfg.Engine.RequestTimeout != 60*time.Second {
		t.Errorf("unexpected timeout defaults: %+v", cfg.Engine)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
engine:
  host: sense.example.com
  port: 14747
  user_directory: corp
  user_id: svc_sweeper
retention:
  days_stale: 365
  min_size_mb: 5.5
  include_published: true
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Engine.Host != "sense.example.com" || cfg.Engine.Port != 14747 {
		t.Errorf("unexpected engine config: %+v", cfg.Engine)
	}
	if got := cfg.Engine.URL(); got != "wss://sense.example.com:14747/app/" {
		t.Errorf("URL() = %q", got)
	}
	if got := cfg.Engine.IdentityHeader(); got != "UserDirectory=corp; UserId=svc_sweeper" {
		t.Errorf("IdentityHeader() = %q", got)
	}
	if cfg.Retention.DaysStale != 365 || cfg.Retention.MinSizeMB != 5.5 || !cfg.Retention.IncludePublished {
		t.Errorf("unexpected retention config: %+v", cfg.Retention)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
engine:
  host: from-file.example.com
retention:
  days_stale: 90
`)
	t.Setenv("SWEEPER_ENGINE_HOST", "from-env.example.com")
	t.Setenv("SWEEPER_RETENTION_DAYS_STALE", "30")
	t.Setenv("SWEEPER_RETENTION_INCLUDE_PUBLISHED", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Engine.Host != "from-env.example.com" {
		t.Errorf("Host = %q, environment should beat the file", cfg.Engine.Host)
	}
	if cfg.Retention.DaysStale != 30 {
		t.Errorf("DaysStale = %d, want 30", cfg.Retention.DaysStale)
	}
	if !cfg.Retention.IncludePublished {
		t.Error("IncludePublished should be overridden to true")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "engine: [not: a: mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected Load() to reject invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(cfg *Config) {}, false},
		{"port too large", func(cfg *Config) { cfg.Engine.Port = 70000 }, true},
		{"negative days", func(cfg *Config) { cfg.Retention.DaysStale = -1 }, true},
		{"negative size floor", func(cfg *Config) { cfg.Retention.MinSizeMB = -0.5 }, true},
		{"bad log level", func(cfg *Config) { cfg.Logging.Level = "loud" }, true},
		{"bad log format", func(cfg *Config) { cfg.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
