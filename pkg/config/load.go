package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults and
// environment overrides, and validates the result. A missing file is not an
// error: the tool runs fine on defaults plus flags.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides overlays SWEEPER_SECTION_FIELD environment variables.
// Environment always takes precedence over the file.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SWEEPER_ENGINE_HOST"); val != "" {
		cfg.Engine.Host = val
	}
	if val := os.Getenv("SWEEPER_ENGINE_PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.Port = i
		}
	}
	if val := os.Getenv("SWEEPER_ENGINE_CA_FILE"); val != "" {
		cfg.Engine.CAFile = val
	}
	if val := os.Getenv("SWEEPER_ENGINE_CERT_FILE"); val != "" {
		cfg.Engine.CertFile = val
	}
	if val := os.Getenv("SWEEPER_ENGINE_KEY_FILE"); val != "" {
		cfg.Engine.KeyFile = val
	}
	if val := os.Getenv("SWEEPER_ENGINE_USER_DIRECTORY"); val != "" {
		cfg.Engine.UserDirectory = val
	}
	if val := os.Getenv("SWEEPER_ENGINE_USER_ID"); val != "" {
		cfg.Engine.UserID = val
	}
	if val := os.Getenv("SWEEPER_ENGINE_DIAL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.DialTimeout = d
		}
	}
	if val := os.Getenv("SWEEPER_ENGINE_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.RequestTimeout = d
		}
	}

	if val := os.Getenv("SWEEPER_RETENTION_DAYS_STALE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retention.DaysStale = i
		}
	}
	if val := os.Getenv("SWEEPER_RETENTION_MIN_SIZE_MB"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Retention.MinSizeMB = f
		}
	}
	if val := os.Getenv("SWEEPER_RETENTION_INCLUDE_PUBLISHED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Retention.IncludePublished = b
		}
	}

	if val := os.Getenv("SWEEPER_REPORT_OUTPUT_DIR"); val != "" {
		cfg.Report.OutputDir = val
	}
	if val := os.Getenv("SWEEPER_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SWEEPER_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("SWEEPER_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SWEEPER_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}
}
