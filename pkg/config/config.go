package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults for fields left unset in the file.
const (
	// DefaultResultLimit is the page size for list calls.
	DefaultResultLimit = 50

	// DefaultWaitTimeout is the total budget for resource waits.
	DefaultWaitTimeout = 600 * time.Second

	// DefaultWaitInterval is the poll interval for resource waits.
	DefaultWaitInterval = 5 * time.Second
)

// Duration wraps time.Duration so durations can be written as "5s" or
// "10m" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root Skybridge configuration.
type Config struct {
	// Provider is the registry name of the provider to use.
	Provider string `yaml:"provider" validate:"required"`

	// ResultLimit is the maximum number of results per list page.
	ResultLimit int `yaml:"result_limit" validate:"gte=0"`

	// WaitTimeout is the total time budget for resource waits.
	WaitTimeout Duration `yaml:"wait_timeout" validate:"gte=0"`

	// WaitInterval is the poll interval for resource waits.
	WaitInterval Duration `yaml:"wait_interval" validate:"gte=0"`

	// Local configures the local provider.
	Local LocalConfig `yaml:"local"`

	// Logging configures structured logging output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures distributed tracing export.
	Tracing TracingConfig `yaml:"tracing"`
}

// LocalConfig configures the SQLite-backed local provider.
type LocalConfig struct {
	// Path is the SQLite database file. Empty means an in-memory database.
	Path string `yaml:"path"`

	// BootDelay is how long freshly created resources stay in their
	// transitional state before a Refresh promotes them.
	BootDelay Duration `yaml:"boot_delay" validate:"gte=0"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`

	// Format specifies the log format (console, json).
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// TracingConfig configures trace export.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	Enabled bool `yaml:"enabled"`

	// Exporter selects the span exporter (otlp, stdout, none).
	Exporter string `yaml:"exporter" validate:"omitempty,oneof=otlp stdout none"`

	// Endpoint is the OTLP gRPC endpoint; only used by the otlp exporter.
	Endpoint string `yaml:"endpoint"`

	// SamplingRate is the fraction of traces to sample (0.0 to 1.0).
	SamplingRate float64 `yaml:"sampling_rate" validate:"gte=0,lte=1"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	// Enabled controls whether the metrics HTTP endpoint is started.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address for the metrics HTTP endpoint.
	ListenAddress string `yaml:"listen_address"`
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	return &Config{
		Provider:     "local",
		ResultLimit:  DefaultResultLimit,
		WaitTimeout:  Duration(DefaultWaitTimeout),
		WaitInterval: Duration(DefaultWaitInterval),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			ListenAddress: ":9090",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "stdout",
			SamplingRate: 1.0,
		},
	}
}

// Load reads, defaults, and validates the configuration file at path. A
// missing path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from an empty struct so we can tell explicit zero values apart
	// from unset fields only where it matters (strings); numeric fields use
	// zero-means-unset.
	var fileCfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.merge(&fileCfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge overlays explicitly set file fields onto the defaults. The explicit
// field always wins.
func (c *Config) merge(file *Config) {
	if file.Provider != "" {
		c.Provider = file.Provider
	}
	if file.ResultLimit != 0 {
		c.ResultLimit = file.ResultLimit
	}
	if file.WaitTimeout != 0 {
		c.WaitTimeout = file.WaitTimeout
	}
	if file.WaitInterval != 0 {
		c.WaitInterval = file.WaitInterval
	}
	if file.Local.Path != "" {
		c.Local.Path = file.Local.Path
	}
	if file.Local.BootDelay != 0 {
		c.Local.BootDelay = file.Local.BootDelay
	}
	if file.Logging.Level != "" {
		c.Logging.Level = file.Logging.Level
	}
	if file.Logging.Format != "" {
		c.Logging.Format = file.Logging.Format
	}
	if file.Metrics.Enabled {
		c.Metrics.Enabled = true
	}
	if file.Metrics.ListenAddress != "" {
		c.Metrics.ListenAddress = file.Metrics.ListenAddress
	}
	if file.Tracing.Enabled {
		c.Tracing.Enabled = true
	}
	if file.Tracing.Exporter != "" {
		c.Tracing.Exporter = file.Tracing.Exporter
	}
	if file.Tracing.Endpoint != "" {
		c.Tracing.Endpoint = file.Tracing.Endpoint
	}
	if file.Tracing.SamplingRate != 0 {
		c.Tracing.SamplingRate = file.Tracing.SamplingRate
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.WaitTimeout < c.WaitInterval {
		return fmt.Errorf("invalid configuration: wait_timeout (%s) must not be smaller than wait_interval (%s)",
			c.WaitTimeout.Std(), c.WaitInterval.Std())
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddress == "" {
		return fmt.Errorf("invalid configuration: metrics listen_address is required when metrics are enabled")
	}
	if c.Tracing.Enabled && c.Tracing.Exporter == "otlp" && c.Tracing.Endpoint == "" {
		return fmt.Errorf("invalid configuration: tracing endpoint is required for the otlp exporter")
	}
	return nil
}
