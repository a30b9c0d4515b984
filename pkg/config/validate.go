package config

import "fmt"

// Validate checks field bounds. Certificate file existence is deliberately
// not checked here: it is checked when the first connection is dialed, so
// the failure carries the right diagnostic for the operation being run.
func Validate(cfg *Config) error {
	if cfg.Engine.Port < 1 || cfg.Engine.Port > 65535 {
		return fmt.Errorf("engine.port must be in 1..65535, got %d", cfg.Engine.Port)
	}
	if cfg.Engine.DialTimeout < 0 {
		return fmt.Errorf("engine.dial_timeout must not be negative")
	}
	if cfg.Engine.RequestTimeout < 0 {
		return fmt.Errorf("engine.request_timeout must not be negative")
	}

	if cfg.Retention.DaysStale < 0 {
		return fmt.Errorf("retention.days_stale must be >= 0, got %d", cfg.Retention.DaysStale)
	}
	if cfg.Retention.MinSizeMB < 0 {
		return fmt.Errorf("retention.min_size_mb must be >= 0, got %g", cfg.Retention.MinSizeMB)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}

	return nil
}
