package telemetry

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Expected default config to validate, got: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"missing service name",
			func(c *Config) { c.ServiceName = "" },
			"service name",
		},
		{
			"bad log level",
			func(c *Config) { c.Logging.Level = "verbose" },
			"invalid log level",
		},
		{
			"bad log format",
			func(c *Config) { c.Logging.Format = "xml" },
			"invalid log format",
		},
		{
			"bad exporter",
			func(c *Config) { c.Tracing.Enabled = true; c.Tracing.Exporter = "jaeger2" },
			"invalid trace exporter",
		},
		{
			"bad sampling rate",
			func(c *Config) { c.Tracing.SamplingRate = 1.5 },
			"sampling rate",
		},
		{
			"metrics without address",
			func(c *Config) { c.Metrics.Enabled = true; c.Metrics.ListenAddress = "" },
			"listen address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestNoopMetricsRecordSafely(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// All record methods must be safe on a disabled collector.
	m.RecordWaitStarted("instance")
	m.RecordWaitCompleted("instance", WaitOutcomeSuccess, 0)
	m.RecordWaitPolls("instance", 3)
	m.RecordPageFetched("local", "instances", 2)
	m.RecordProviderCall("local", "create", 0)
	m.RecordProviderError("local", "create")
}
