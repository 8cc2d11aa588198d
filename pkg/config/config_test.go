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
	path := filepath.Join(t.TempDir(), "skybridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Provider != "local" {
		t.Errorf("Expected default provider local, got %s", cfg.Provider)
	}
	if cfg.ResultLimit != DefaultResultLimit {
		t.Errorf("Expected default result limit %d, got %d", DefaultResultLimit, cfg.ResultLimit)
	}
	if cfg.WaitTimeout.Std() != DefaultWaitTimeout {
		t.Errorf("Expected default wait timeout %s, got %s", DefaultWaitTimeout, cfg.WaitTimeout.Std())
	}
	if cfg.WaitInterval.Std() != DefaultWaitInterval {
		t.Errorf("Expected default wait interval %s, got %s", DefaultWaitInterval, cfg.WaitInterval.Std())
	}
}

func TestLoad_ExplicitFieldWinsOverDefault(t *testing.T) {
	path := writeConfig(t, `
provider: local
result_limit: 10
wait_timeout: 30s
wait_interval: 1s
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.ResultLimit != 10 {
		t.Errorf("Expected result limit 10, got %d", cfg.ResultLimit)
	}
	if cfg.WaitTimeout.Std() != 30*time.Second {
		t.Errorf("Expected wait timeout 30s, got %s", cfg.WaitTimeout.Std())
	}
	if cfg.WaitInterval.Std() != time.Second {
		t.Errorf("Expected wait interval 1s, got %s", cfg.WaitInterval.Std())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Logging.Level)
	}
	// Untouched fields keep their defaults.
	if cfg.Logging.Format != "console" {
		t.Errorf("Expected default log format console, got %s", cfg.Logging.Format)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, `
provider: local
results_limit: 10
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected an error for an unknown configuration key")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
provider: local
wait_timeout: soon
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("Expected an invalid duration error, got: %v", err)
	}
}

func TestValidate_TimeoutBelowInterval(t *testing.T) {
	cfg := Default()
	cfg.WaitTimeout = Duration(time.Second)
	cfg.WaitInterval = Duration(5 * time.Second)

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected an error when wait_timeout < wait_interval")
	}
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected an error for an unrecognized log level")
	}
}

func TestValidate_MissingProvider(t *testing.T) {
	cfg := Default()
	cfg.Provider = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected an error for a missing provider name")
	}
}

func TestLoad_TracingSection(t *testing.T) {
	path := writeConfig(t, `
provider: local
tracing:
  enabled: true
  exporter: otlp
  endpoint: localhost:4317
  sampling_rate: 0.5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !cfg.Tracing.Enabled {
		t.Error("Expected tracing to be enabled")
	}
	if cfg.Tracing.Exporter != "otlp" {
		t.Errorf("Expected exporter otlp, got %s", cfg.Tracing.Exporter)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" {
		t.Errorf("Expected endpoint localhost:4317, got %s", cfg.Tracing.Endpoint)
	}
	if cfg.Tracing.SamplingRate != 0.5 {
		t.Errorf("Expected sampling rate 0.5, got %f", cfg.Tracing.SamplingRate)
	}
}

func TestLoad_TracingDefaultsDisabled(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Tracing.Enabled {
		t.Error("Expected tracing disabled by default")
	}
	if cfg.Tracing.Exporter != "stdout" {
		t.Errorf("Expected default exporter stdout, got %s", cfg.Tracing.Exporter)
	}
	if cfg.Tracing.SamplingRate != 1.0 {
		t.Errorf("Expected default sampling rate 1.0, got %f", cfg.Tracing.SamplingRate)
	}
}

func TestValidate_BadTracingExporter(t *testing.T) {
	cfg := Default()
	cfg.Tracing.Exporter = "zipkin"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected an error for an unrecognized trace exporter")
	}
}

func TestValidate_OtlpExporterRequiresEndpoint(t *testing.T) {
	cfg := Default()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "otlp"
	cfg.Tracing.Endpoint = ""

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "endpoint") {
		t.Fatalf("Expected a missing endpoint error, got: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected an error for a nonexistent config file")
	}
}
