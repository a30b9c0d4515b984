package config

import "time"

// DefaultEnginePort is the engine API's fixed well-known port.
const DefaultEnginePort = 4747

// ApplyDefaults fills unset fields with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Engine.Port == 0 {
		cfg.Engine.Port = DefaultEnginePort
	}
	if cfg.Engine.CAFile == "" {
		cfg.Engine.CAFile = "certs/root.pem"
	}
	if cfg.Engine.CertFile == "" {
		cfg.Engine.CertFile = "certs/client.pem"
	}
	if cfg.Engine.KeyFile == "" {
		cfg.Engine.KeyFile = "certs/client_key.pem"
	}
	if cfg.Engine.UserDirectory == "" {
		cfg.Engine.UserDirectory = "internal"
	}
	if cfg.Engine.UserID == "" {
		cfg.Engine.UserID = "sa_engine"
	}
	if cfg.Engine.DialTimeout == 0 {
		cfg.Engine.DialTimeout = 10 * time.Second
	}
	if cfg.Engine.RequestTimeout == 0 {
		cfg.Engine.RequestTimeout = 60 * time.Second
	}

	if cfg.Retention.DaysStale == 0 {
		cfg.Retention.DaysStale = 180
	}
	if cfg.Retention.MinSizeMB == 0 {
		cfg.Retention.MinSizeMB = 1.0
	}

	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "."
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = "127.0.0.1:9464"
	}
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
