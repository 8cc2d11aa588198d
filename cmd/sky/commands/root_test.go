package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/skybridge/skybridge/pkg/cloud"
	"github.com/skybridge/skybridge/pkg/config"
	"github.com/skybridge/skybridge/pkg/telemetry"
)

// stubResource walks through a fixed state sequence, one step per refresh.
type stubResource struct {
	id     string
	states []cloud.State
	pos    int
}

func (s *stubResource) ID() string         { return s.id }
func (s *stubResource) State() cloud.State { return s.states[s.pos] }

func (s *stubResource) Refresh(ctx context.Context) error {
	if s.pos < len(s.states)-1 {
		s.pos++
	}
	return nil
}

func newTestTelemetry(t *testing.T) *telemetry.Telemetry {
	t.Helper()
	cfg := telemetry.DefaultConfig()
	cfg.Metrics.Enabled = true
	built, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		t.Fatalf("Expected telemetry to build, got: %v", err)
	}
	return built
}

func fastWaitConfig(timeout time.Duration) *config.Config {
	cfg := config.Default()
	cfg.WaitTimeout = config.Duration(timeout)
	cfg.WaitInterval = config.Duration(0)
	return cfg
}

func scrapeMetrics(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	tel.Metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestWaitForResourceRecordsMetrics(t *testing.T) {
	tel = newTestTelemetry(t)

	res := &stubResource{
		id:     "i-test",
		states: []cloud.State{cloud.InstanceStatePending, cloud.InstanceStateRunning},
	}
	err := waitForResource(context.Background(), fastWaitConfig(time.Second), "instance", res,
		cloud.InstanceReadyStates, cloud.InstanceTerminalStates)
	if err != nil {
		t.Fatalf("Expected the wait to succeed, got: %v", err)
	}

	body := scrapeMetrics(t)
	for _, want := range []string{
		`skybridge_waits_started_total{resource_type="instance"} 1`,
		`skybridge_waits_completed_total{outcome="success",resource_type="instance"} 1`,
		`skybridge_wait_polls_total{resource_type="instance"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected metrics output to contain %q", want)
		}
	}
}

func TestWaitForResourceRecordsTerminalOutcome(t *testing.T) {
	tel = newTestTelemetry(t)

	res := &stubResource{
		id:     "i-dead",
		states: []cloud.State{cloud.InstanceStateError},
	}
	err := waitForResource(context.Background(), fastWaitConfig(time.Second), "instance", res,
		cloud.InstanceReadyStates, cloud.InstanceTerminalStates)
	if !cloud.IsTerminalState(err) {
		t.Fatalf("Expected a terminal state error, got: %v", err)
	}

	body := scrapeMetrics(t)
	want := `skybridge_waits_completed_total{outcome="terminal_state",resource_type="instance"} 1`
	if !strings.Contains(body, want) {
		t.Errorf("Expected metrics output to contain %q", want)
	}
}

func TestWaitOutcomeClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, telemetry.WaitOutcomeSuccess},
		{"terminal state", &cloud.TerminalStateError{ResourceID: "i-1", State: cloud.InstanceStateError}, telemetry.WaitOutcomeTerminalState},
		{"wrapped timeout", fmt.Errorf("wait: %w", &cloud.WaitTimeoutError{ResourceID: "i-1"}), telemetry.WaitOutcomeTimeout},
		{"refresh failure", errors.New("connection reset"), telemetry.WaitOutcomeRefreshError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := waitOutcome(tt.err); got != tt.want {
				t.Errorf("Expected outcome %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCollectAllWalksEveryPage(t *testing.T) {
	tel = newTestTelemetry(t)

	pages := map[string]*cloud.ResultPage[int]{
		"":   {Data: []int{1, 2}, Marker: "m1", IsTruncated: true},
		"m1": {Data: []int{3}},
	}
	src := cloud.PageFunc[int](func(ctx context.Context, marker string) (*cloud.ResultPage[int], error) {
		page, ok := pages[marker]
		if !ok {
			return nil, fmt.Errorf("unknown marker %q", marker)
		}
		return page, nil
	})

	items, err := collectAll[int](context.Background(), "local", "instances", src)
	if err != nil {
		t.Fatalf("Expected collection to succeed, got: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("Expected 3 items across pages, got %d", len(items))
	}
}

func TestApplyLogging(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	if err := applyLogging(&config.LoggingConfig{Level: "warn", Format: "json"}); err != nil {
		t.Fatalf("Expected logging setup to succeed, got: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("Expected global level warn, got %s", zerolog.GlobalLevel())
	}

	if err := applyLogging(&config.LoggingConfig{Level: "loud", Format: "console"}); err == nil {
		t.Fatal("Expected an error for an unrecognized log level")
	}
}
