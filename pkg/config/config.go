// Package config defines the tool's configuration: the engine endpoint and
// credentials, the retention policy defaults, report output, logging and
// metrics. Configuration is loaded from a YAML file, overlaid with
// SWEEPER_* environment variables, and finally with command-line flags.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Retention RetentionConfig `yaml:"retention"`
	Report    ReportConfig    `yaml:"report"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// EngineConfig describes the engine endpoint and the credentials presented
// to it.
type EngineConfig struct {
	// Host is the engine server hostname. Required; may be supplied on the
	// command line instead of the file.
	Host string `yaml:"host"`

	// Port is the engine API port.
	Port int `yaml:"port"`

	// CAFile is the PEM root certificate the server is validated against.
	CAFile string `yaml:"ca_file"`

	// CertFile and KeyFile are the PEM client certificate pair.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// UserDirectory and UserID form the identity header asserting the
	// caller as an internal service account.
	UserDirectory string `yaml:"user_directory"`
	UserID        string `yaml:"user_id"`

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// RequestTimeout bounds each request/reply exchange.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// URL returns the websocket endpoint for this engine.
func (e EngineConfig) URL() string {
	return fmt.Sprintf("wss://%s:%d/app/", e.Host, e.Port)
}

// IdentityHeader returns the X-Qlik-User header value.
func (e EngineConfig) IdentityHeader() string {
	return fmt.Sprintf("UserDirectory=%s; UserId=%s", e.UserDirectory, e.UserID)
}

// RetentionConfig is the default retention policy; command-line flags
// override it per run.
type RetentionConfig struct {
	DaysStale        int     `yaml:"days_stale"`
	MinSizeMB        float64 `yaml:"min_size_mb"`
	IncludePublished bool    `yaml:"include_published"`
}

// ReportConfig controls the report file boundary.
type ReportConfig struct {
	// OutputDir is where timestamped report files are written.
	OutputDir string `yaml:"output_dir"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is one of text, json.
	Format string `yaml:"format"`
}

// MetricsConfig controls the optional metrics endpoint for long batches.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// ListenAddress is where the endpoint is served when enabled.
	ListenAddress string `yaml:"listen_address"`
}
