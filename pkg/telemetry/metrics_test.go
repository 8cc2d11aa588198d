package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(MetricsConfig{
		Enabled:       true,
		ListenAddress: ":0",
		Namespace:     "skybridge",
	})
	if err != nil {
		t.Fatalf("Expected metrics to build, got: %v", err)
	}
	return m
}

func TestWaitMetricsRecorded(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordWaitStarted("instance")
	m.RecordWaitStarted("instance")
	m.RecordWaitCompleted("instance", WaitOutcomeSuccess, 250*time.Millisecond)
	m.RecordWaitCompleted("instance", WaitOutcomeTimeout, time.Second)
	m.RecordWaitPolls("instance", 4)

	if got := testutil.ToFloat64(m.waitsStarted.WithLabelValues("instance")); got != 2 {
		t.Errorf("Expected 2 started waits, got %v", got)
	}
	if got := testutil.ToFloat64(m.waitsCompleted.WithLabelValues("instance", WaitOutcomeSuccess)); got != 1 {
		t.Errorf("Expected 1 successful wait, got %v", got)
	}
	if got := testutil.ToFloat64(m.waitsCompleted.WithLabelValues("instance", WaitOutcomeTimeout)); got != 1 {
		t.Errorf("Expected 1 timed-out wait, got %v", got)
	}
	if got := testutil.ToFloat64(m.waitPolls.WithLabelValues("instance")); got != 4 {
		t.Errorf("Expected 4 recorded polls, got %v", got)
	}
}

func TestPageMetricsRecorded(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordPageFetched("local", "instances", 3)
	m.RecordPageFetched("local", "instances", 2)

	if got := testutil.ToFloat64(m.pagesFetched.WithLabelValues("local", "instances")); got != 2 {
		t.Errorf("Expected 2 fetched pages, got %v", got)
	}
	if got := testutil.ToFloat64(m.itemsYielded.WithLabelValues("local", "instances")); got != 5 {
		t.Errorf("Expected 5 yielded items, got %v", got)
	}
}

func TestProviderMetricsRecorded(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordProviderCall("local", "instance_create", 10*time.Millisecond)
	m.RecordProviderError("local", "instance_create")

	if got := testutil.ToFloat64(m.providerCalls.WithLabelValues("local", "instance_create")); got != 1 {
		t.Errorf("Expected 1 provider call, got %v", got)
	}
	if got := testutil.ToFloat64(m.providerErrors.WithLabelValues("local", "instance_create")); got != 1 {
		t.Errorf("Expected 1 provider error, got %v", got)
	}
}
